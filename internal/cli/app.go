// Package cli implements the jobportal command line client. Each invocation
// runs one command against the configured backend; the session file carries
// the login between invocations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/query"
	"github.com/iliyamo/job-portal-manager/internal/service"
	"github.com/iliyamo/job-portal-manager/internal/session"
)

// ErrUsage is returned for an unknown command or bad flags.
var ErrUsage = errors.New("usage")

var errNotLoggedIn = apperr.Auth("Not logged in, run 'jobportal login' first")

// App runs CLI commands.
type App struct {
	backend  Backend
	sessions session.Store
	in       *bufio.Reader
	out      io.Writer
	now      func() time.Time
}

// NewApp wires an App. in and out are the terminal streams.
func NewApp(b Backend, sessions session.Store, in io.Reader, out io.Writer) *App {
	return &App{backend: b, sessions: sessions, in: bufio.NewReader(in), out: out, now: time.Now}
}

type command struct {
	name    string
	usage   string
	authed  bool
	handler func(a *App, ctx context.Context, s *session.Session, uid uint64, args []string) error
}

var commands = []command{
	{"register", "register -name NAME -email EMAIL [-password PW]", false, (*App).register},
	{"login", "login -email EMAIL [-password PW]", false, (*App).login},
	{"logout", "logout", false, (*App).logout},
	{"whoami", "whoami", true, (*App).whoami},
	{"status", "status   (check the backend and the saved login)", false, (*App).status},
	{"add", "add -category CATEGORY -link LINK", true, (*App).add},
	{"list", "list [-category CATEGORY]", true, (*App).list},
	{"categories", "categories", true, (*App).categories},
	{"select", "select [CATEGORY]   (no argument clears the selection)", true, (*App).selectCategory},
	{"edit", "edit -id ID [-category CATEGORY] [-link LINK]", true, (*App).edit},
	{"delete", "delete -id ID", true, (*App).delete},
	{"reset", "reset   (replace all portals with the defaults)", true, (*App).reset},
	{"search", "search -keyword KEYWORD [-range today|this-week|this-month] [-category C] [-no-hybrid] [-no-onsite]", true, (*App).search},
}

// Usage prints the command list.
func (a *App) Usage() {
	fmt.Fprintln(a.out, "usage: jobportal <command> [flags]")
	for _, c := range commands {
		fmt.Fprintln(a.out, "  "+c.usage)
	}
}

// Run executes args[0] with the remaining arguments. An authentication
// failure on any command clears the saved session before it is reported.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.Usage()
		return ErrUsage
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		a.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	s, err := a.sessions.Load()
	if err != nil {
		return err
	}

	var uid uint64
	if cmd.authed {
		if !s.LoggedIn(a.now()) {
			err = errNotLoggedIn
		} else {
			uid, err = a.backend.Authenticate(ctx, s.Token, s.User.ID)
		}
	}
	if err == nil {
		err = cmd.handler(a, ctx, s, uid, args[1:])
	}
	if errors.Is(err, apperr.ErrAuth) && s.Token != "" {
		if cerr := a.sessions.Clear(); cerr != nil {
			return errors.Join(err, cerr)
		}
	}
	return err
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func (a *App) register(ctx context.Context, _ *session.Session, _ uint64, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	var err error
	if *name == "" {
		if *name, err = prompt(a.in, a.out, "Name"); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = prompt(a.in, a.out, "Email"); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = promptPassword(a.in, a.out); err != nil {
			return err
		}
	}

	id, err := a.backend.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User registered successfully (id %d). Run 'jobportal login' to sign in.\n", id)
	return nil
}

func (a *App) login(ctx context.Context, _ *session.Session, _ uint64, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	var err error
	if *email == "" {
		if *email, err = prompt(a.in, a.out, "Email"); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = promptPassword(a.in, a.out); err != nil {
			return err
		}
	}

	res, err := a.backend.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	exp := res.ExpiresAt
	if exp.IsZero() {
		exp = a.now().Add(service.DefaultTokenTTL)
	}
	if err := a.sessions.Save(&session.Session{Token: res.Token, ExpiresAt: exp, User: res.User}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Login successful. Welcome, %s.\n", res.User.Name)
	return nil
}

func (a *App) logout(context.Context, *session.Session, uint64, []string) error {
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, s *session.Session, _ uint64, _ []string) error {
	fmt.Fprintf(a.out, "%s <%s> (id %d)\n", s.User.Name, s.User.Email, s.User.ID)
	if s.SelectedCategory != "" {
		fmt.Fprintf(a.out, "selected category: %s\n", s.SelectedCategory)
	}
	return nil
}

func (a *App) status(ctx context.Context, s *session.Session, _ uint64, _ []string) error {
	if err := a.backend.Ping(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	fmt.Fprintln(a.out, "Backend: ok")
	if s.LoggedIn(a.now()) {
		fmt.Fprintf(a.out, "Logged in as %s <%s>\n", s.User.Name, s.User.Email)
	} else {
		fmt.Fprintln(a.out, "Not logged in")
	}
	return nil
}

func (a *App) add(ctx context.Context, s *session.Session, uid uint64, args []string) error {
	fs := a.flags("add")
	category := fs.String("category", "", "category label (defaults to the selected category)")
	link := fs.String("link", "", "site, e.g. indeed.com")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *category == "" {
		*category = s.SelectedCategory
	}
	id, err := a.backend.Portals().Create(ctx, uid, *category, *link)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Portal created successfully (id %d)\n", id)
	return nil
}

func (a *App) list(ctx context.Context, s *session.Session, uid uint64, args []string) error {
	fs := a.flags("list")
	category := fs.String("category", "", "only this category")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	portals, err := a.backend.Portals().List(ctx, uid)
	if err != nil {
		return err
	}
	if len(portals) == 0 {
		fmt.Fprintln(a.out, "No portals yet. Add one with 'jobportal add' or run 'jobportal reset'.")
		return nil
	}
	printGrouped(a.out, portals, *category, s.SelectedCategory)
	return nil
}

// printGrouped writes portals grouped under their category header, in the
// order they were listed. The selected category is marked with '*'.
func printGrouped(w io.Writer, portals []model.Portal, only, selected string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	current := ""
	for i, p := range portals {
		if only != "" && p.Category != only {
			continue
		}
		if i == 0 || p.Category != current {
			current = p.Category
			mark := ""
			if current == selected {
				mark = " *"
			}
			fmt.Fprintf(tw, "%s%s\n", current, mark)
		}
		fmt.Fprintf(tw, "  #%d\t%s\n", p.ID, p.Link)
	}
	_ = tw.Flush()
}

func (a *App) categories(ctx context.Context, s *session.Session, uid uint64, _ []string) error {
	cats, err := a.backend.Portals().Categories(ctx, uid)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c == s.SelectedCategory {
			fmt.Fprintf(a.out, "%s *\n", c)
			continue
		}
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *App) selectCategory(ctx context.Context, s *session.Session, uid uint64, args []string) error {
	category := strings.TrimSpace(strings.Join(args, " "))
	if category != "" {
		cats, err := a.backend.Portals().Categories(ctx, uid)
		if err != nil {
			return err
		}
		if !slices.Contains(cats, category) {
			return apperr.NotFound(fmt.Sprintf("Category %q not found", category))
		}
	}
	s.SelectedCategory = category
	if err := a.sessions.Save(s); err != nil {
		return err
	}
	if category == "" {
		fmt.Fprintln(a.out, "Selection cleared.")
	} else {
		fmt.Fprintf(a.out, "Selected %s.\n", category)
	}
	return nil
}

func (a *App) edit(ctx context.Context, _ *session.Session, uid uint64, args []string) error {
	fs := a.flags("edit")
	id := fs.Uint64("id", 0, "portal id")
	var patch model.PortalPatch
	fs.Func("category", "new category", func(v string) error { patch.Category = &v; return nil })
	fs.Func("link", "new link", func(v string) error { patch.Link = &v; return nil })
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("%w: edit needs -id", ErrUsage)
	}
	if patch.Empty() {
		return fmt.Errorf("%w: edit needs -category or -link", ErrUsage)
	}
	if err := a.backend.Portals().Update(ctx, uid, *id, patch); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Portal updated successfully")
	return nil
}

func (a *App) delete(ctx context.Context, _ *session.Session, uid uint64, args []string) error {
	fs := a.flags("delete")
	id := fs.Uint64("id", 0, "portal id")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("%w: delete needs -id", ErrUsage)
	}
	if err := a.backend.Portals().Delete(ctx, uid, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Portal deleted successfully")
	return nil
}

func (a *App) reset(ctx context.Context, s *session.Session, uid uint64, _ []string) error {
	if err := a.backend.Portals().ResetDefaults(ctx, uid); err != nil {
		return err
	}
	if s.SelectedCategory != "" {
		s.SelectedCategory = ""
		if err := a.sessions.Save(s); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Portals reset to %d defaults.\n", len(model.DefaultPortals))
	return nil
}

func (a *App) search(ctx context.Context, s *session.Session, uid uint64, args []string) error {
	fs := a.flags("search")
	keyword := fs.String("keyword", "", "job title or skill")
	rng := fs.String("range", "", "today, this-week or this-month (default today)")
	category := fs.String("category", "", "restrict to one category (defaults to the selected category)")
	noHybrid := fs.Bool("no-hybrid", false, "exclude hybrid roles")
	noOnsite := fs.Bool("no-onsite", false, "exclude onsite roles")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *keyword == "" && fs.NArg() > 0 {
		*keyword = strings.Join(fs.Args(), " ")
	}
	if *category == "" {
		*category = s.SelectedCategory
	}

	res, err := a.backend.Search(ctx, uid, service.SearchRequest{
		Keyword:       *keyword,
		Category:      *category,
		DateRange:     query.ParseDateRange(*rng),
		ExcludeHybrid: *noHybrid,
		ExcludeOnsite: *noOnsite,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Query)
	fmt.Fprintln(a.out, res.URL)
	return nil
}
