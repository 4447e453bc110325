package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/geocoder89/notesapp/internal/client"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"golang.org/x/term"
)

type cliConfig struct {
	APIBaseURL string `json:"api_base_url"`
	Session    string `json:"session"`
}

const defaultAPI = "http://localhost:8080"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = commandRegister(args)
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout(args)
	case "me":
		err = commandMe(args)
	case "list", "ls":
		err = commandList(args)
	case "add":
		err = commandAdd(args)
	case "edit":
		err = commandEdit(args)
	case "pin", "unpin", "archive", "unarchive":
		err = commandToggle(cmd, args)
	case "rm":
		err = commandRemove(args)
	case "export":
		err = commandExport(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPI+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}

	secret, err := passwordOrPrompt(*password, "Password: ")
	if err != nil {
		return err
	}
	confirm := secret
	if strings.TrimSpace(*password) == "" {
		if confirm, err = passwordOrPrompt("", "Confirm password: "); err != nil {
			return err
		}
	}

	cfg, cli, err := clientFor(*apiBase)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	u, err := cli.Register(ctx, user.RegisterRequest{
		Name:            *name,
		Email:           *email,
		Password:        secret,
		PasswordConfirm: confirm,
	})
	if err != nil {
		return err
	}

	cfg.Session = cli.Session()
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s\n", u.Email)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPI+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}

	secret, err := passwordOrPrompt(*password, "Password: ")
	if err != nil {
		return err
	}

	cfg, cli, err := clientFor(*apiBase)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	u, err := cli.Login(ctx, *email, secret)
	if err != nil {
		return err
	}

	cfg.Session = cli.Session()
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", u.Email)
	return nil
}

func commandLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	cfg, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// the local token is dropped even if the server already forgot it
	logoutErr := cli.Logout(ctx)

	cfg.Session = ""
	if err := saveConfig(cfg); err != nil {
		return err
	}
	if logoutErr != nil && !isUnauthorized(logoutErr) {
		return logoutErr
	}
	fmt.Println("signed out")
	return nil
}

func commandMe(args []string) error {
	fs := flag.NewFlagSet("me", flag.ExitOnError)
	fs.Parse(args)

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	u, err := cli.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	return nil
}

func listFlags(fs *flag.FlagSet) *client.ListOptions {
	opts := &client.ListOptions{}
	fs.StringVar(&opts.Query, "q", "", "Case-insensitive search over title and content")
	fs.StringVar(&opts.Date, "date", "", "Date window: all, today, thisWeek, thisMonth")
	fs.StringVar(&opts.Sort, "sort", "", "Sort: latest, oldest, title, taskDateAsc, taskDateDesc")
	fs.BoolVar(&opts.HideArchived, "hide-archived", false, "Leave archived notes out")
	return opts
}

func commandList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	opts := listFlags(fs)
	fs.Parse(args)

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notes, err := cli.ListNotes(ctx, *opts)
	if err != nil {
		return err
	}
	printNotes(os.Stdout, notes)
	return nil
}

func commandAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Note title")
	content := fs.String("content", "", "Note body")
	date := fs.String("date", "", "Task date, YYYY-MM-DD")
	fs.Parse(args)

	req := note.CreateRequest{Title: *title, Content: *content}
	if strings.TrimSpace(*date) != "" {
		d, err := note.ParseDate(*date)
		if err != nil {
			return err
		}
		req.TaskDate = &d
	}

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	n, err := cli.CreateNote(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", n.ID)
	return nil
}

func commandEdit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "Note id")
	title := fs.String("title", "", "New title")
	content := fs.String("content", "", "New body")
	date := fs.String("date", "", "New task date, YYYY-MM-DD")
	fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		return errors.New("--id is required")
	}

	// only flags given on the command line become part of the patch
	var req note.PatchRequest
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			req.Title = title
		case "content":
			req.Content = content
		case "date":
			d, err := note.ParseDate(*date)
			if err != nil {
				parseErr = err
				return
			}
			req.TaskDate = &d
		}
	})
	if parseErr != nil {
		return parseErr
	}

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	n, err := cli.UpdateNote(ctx, *id, req)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s\n", n.ID)
	return nil
}

func commandToggle(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	opts := listFlags(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: notesctl %s <id>", cmd)
	}
	id := fs.Arg(0)

	var req note.PatchRequest
	on := !strings.HasPrefix(cmd, "un")
	switch strings.TrimPrefix(cmd, "un") {
	case "pin":
		req.Pinned = &on
	case "archive":
		req.Archived = &on
	}

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notes, err := cli.MutateThenList(ctx, func(ctx context.Context) error {
		_, err := cli.UpdateNote(ctx, id, req)
		return err
	}, *opts)
	if err != nil {
		return err
	}
	printNotes(os.Stdout, notes)
	return nil
}

func commandRemove(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("usage: notesctl rm <id>...")
	}

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, id := range fs.Args() {
		if err := cli.DeleteNote(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		fmt.Printf("deleted %s\n", id)
	}
	return nil
}

func commandExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	id := fs.String("id", "", "Export a single note")
	date := fs.String("date", "", "Export notes due on this day, YYYY-MM-DD (default today)")
	format := fs.String("format", "pdf", "Output format: pdf, xlsx, json")
	out := fs.String("out", "", "Output path (default: server-suggested filename)")
	fs.Parse(args)

	if *id != "" && *date != "" {
		return errors.New("--id and --date are mutually exclusive")
	}

	_, cli, err := requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var doc client.Export
	if *id != "" {
		doc, err = cli.ExportNote(ctx, *id, *format)
	} else {
		doc, err = cli.ExportDate(ctx, *date, *format)
	}
	if err != nil {
		return err
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		path = filepath.Base(doc.Filename)
	}
	if path == "" || path == "." {
		path = "notes." + *format
	}

	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(doc.Body))
	return nil
}

func printNotes(w io.Writer, notes []note.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tFLAGS\tUPDATED")
	for _, n := range notes {
		due := "-"
		if n.TaskDate != nil {
			due = n.TaskDate.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, truncate(n.Title, 40), due, flags(n), n.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func flags(n note.Note) string {
	var f []string
	if n.Pinned {
		f = append(f, "pinned")
	}
	if n.Archived {
		f = append(f, "archived")
	}
	if len(f) == 0 {
		return "-"
	}
	return strings.Join(f, ",")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func passwordOrPrompt(given, prompt string) (string, error) {
	if secret := strings.TrimSpace(given); secret != "" {
		return secret, nil
	}

	fmt.Print(prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

func isUnauthorized(err error) bool {
	var apiErr client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

func clientFor(apiBase string) (cliConfig, *client.Client, error) {
	cfg, _ := loadConfig()
	if strings.TrimSpace(apiBase) != "" {
		cfg.APIBaseURL = apiBase
	} else if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPI
	}

	cli, err := client.New(cfg.APIBaseURL, client.WithSession(cfg.Session))
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cli, nil
}

func requireSession() (cliConfig, *client.Client, error) {
	cfg, cli, err := clientFor("")
	if err != nil {
		return cfg, nil, err
	}
	if cfg.Session == "" {
		return cfg, nil, errors.New("not signed in (run `notesctl login`)")
	}
	return cfg, cli, nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	if custom := strings.TrimSpace(os.Getenv("NOTESCTL_CONFIG")); custom != "" {
		return custom, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "notesctl", "config.json"), nil
}

func printUsage() {
	fmt.Println(`notesctl - command line client for the notes API

Usage:
  notesctl register --email you@example.com [--name Ada] [--password ...] [--api URL]
  notesctl login --email you@example.com [--password ...] [--api URL]
  notesctl logout
  notesctl me
  notesctl list [-q text] [-date all|today|thisWeek|thisMonth] [-sort latest|oldest|title|taskDateAsc|taskDateDesc] [-hide-archived]
  notesctl add --title T [--content C] [--date YYYY-MM-DD]
  notesctl edit --id ID [--title T] [--content C] [--date YYYY-MM-DD]
  notesctl pin|unpin|archive|unarchive [list flags] <id>
  notesctl rm <id>...
  notesctl export [--id ID | --date YYYY-MM-DD] [--format pdf|xlsx|json] [--out path]

Environment:
  NOTESCTL_CONFIG  overrides the config file location`)
}
