// Command talkie is a CLI client for the Talkie identity service.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osokin/talkie/internal/client"
	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/friends"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// authAPI adapts the HTTP client to the session machine, printing the
// dev-mode verification code when the service echoes one.
type authAPI struct {
	cli *client.Client
}

func (a *authAPI) SendCode(ctx context.Context, p string) error {
	devCode, err := a.cli.SendCode(ctx, p)
	if err != nil {
		return err
	}
	if devCode != "" {
		fmt.Printf("dev code: %s\n", devCode)
	}
	return nil
}

func (a *authAPI) VerifyCode(ctx context.Context, p, code string) (*model.Identity, error) {
	return a.cli.VerifyCode(ctx, p, code)
}

func (a *authAPI) CreateProfile(ctx context.Context, p, nickname, username string) (model.Identity, error) {
	return a.cli.CreateProfile(ctx, p, nickname, username)
}

func usage() {
	fmt.Fprintf(os.Stderr, `talkie CLI
Usage:
  talkie -addr URL <cmd> [args]

Commands:
  version
  login                              (interactive phone verification)
  whoami
  logout
  friends
  search     -q <query>
  add        -id <user id>
  accept     -id <user id>
  chats
  startchat  -id <friend id> [-name <chat name>]
`)
	os.Exit(2)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var se *errs.ServiceError
	if errors.As(err, &se) {
		fmt.Fprintf(os.Stderr, "service error: %s\n", se.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// mustIdentity loads the persisted session or exits asking for login.
func mustIdentity(store *session.Store) model.Identity {
	id, ok := store.Load()
	if !ok {
		fmt.Fprintln(os.Stderr, "not logged in (run: talkie login)")
		os.Exit(1)
	}
	return id
}

// main dispatches subcommands against the identity service.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "service base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cli := client.New(*addr)
	store := session.NewStore(session.DefaultPath())

	switch cmd {

	case "version":
		fmt.Printf("talkie %s (%s)\n", version, buildDate)

	case "login":
		if err := runLogin(ctx, cli, store); err != nil {
			fail(err)
		}

	case "whoami":
		id := mustIdentity(store)
		printJSON(id)

	case "logout":
		m := session.NewMachine(&authAPI{cli: cli}, store)
		if err := m.Logout(); err != nil {
			if errors.Is(err, errs.ErrBadTransition) {
				fmt.Fprintln(os.Stderr, "not logged in")
				os.Exit(1)
			}
			fail(err)
		}
		fmt.Println("ok")

	case "friends":
		id := mustIdentity(store)
		dir := friends.NewDirectory(cli, id.ID, cliLogger())
		snap := dir.Reload(ctx)
		if snap.Failed {
			fmt.Fprintln(os.Stderr, "friend list unavailable")
			os.Exit(1)
		}
		printJSON(snap.Friends)

	case "search":
		fs := flag.NewFlagSet("search", flag.ExitOnError)
		q := fs.String("q", "", "search query")
		_ = fs.Parse(flag.Args()[1:])
		if strings.TrimSpace(*q) == "" {
			fmt.Fprintln(os.Stderr, "need -q")
			os.Exit(1)
		}
		id := mustIdentity(store)
		dir := friends.NewDirectory(cli, id.ID, cliLogger())
		printJSON(dir.Search(ctx, *q))

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		friendID := fs.Int64("id", 0, "user id")
		_ = fs.Parse(flag.Args()[1:])
		if *friendID <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		id := mustIdentity(store)
		dir := friends.NewDirectory(cli, id.ID, cliLogger())
		if err := dir.SendRequest(ctx, *friendID); err != nil {
			fail(err)
		}
		fmt.Println("request sent")

	case "accept":
		fs := flag.NewFlagSet("accept", flag.ExitOnError)
		friendID := fs.Int64("id", 0, "user id")
		_ = fs.Parse(flag.Args()[1:])
		if *friendID <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		id := mustIdentity(store)
		dir := friends.NewDirectory(cli, id.ID, cliLogger())
		if err := dir.Accept(ctx, *friendID); err != nil {
			fail(err)
		}
		fmt.Println("request accepted")

	case "chats":
		id := mustIdentity(store)
		list, err := cli.ListChats(ctx, id.ID)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "startchat":
		fs := flag.NewFlagSet("startchat", flag.ExitOnError)
		friendID := fs.Int64("id", 0, "friend id")
		name := fs.String("name", "", "chat name")
		_ = fs.Parse(flag.Args()[1:])
		if *friendID <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		id := mustIdentity(store)
		chatID, err := cli.CreatePrivateChat(ctx, id.ID, *friendID, *name)
		if err != nil {
			fail(err)
		}
		fmt.Printf("chat %d\n", chatID)

	default:
		usage()
	}
}

// cliLogger returns a quiet logger; directory fetch failures already degrade
// to empty results and the CLI reports them through exit status.
func cliLogger() *zap.Logger {
	return zap.NewNop()
}

// runLogin drives the interactive phone -> code -> profile flow. A single
// goroutine owns the machine; stdin lines arrive over a channel so the
// resend countdown can tick between inputs.
func runLogin(ctx context.Context, cli *client.Client, store *session.Store) error {
	api := &authAPI{cli: cli}
	m := session.NewMachine(api, store)

	if id, ok := m.Identity(); ok {
		fmt.Printf("already logged in as %s (@%s)\n", id.Nickname, id.Username)
		return nil
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	readLine := func(prompt string) (string, error) {
		fmt.Print(prompt)
		select {
		case line := <-lines:
			return line, nil
		case err := <-scanErr:
			if err == nil {
				err = errors.New("input closed")
			}
			return "", err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// The handler stashes the completed code; Verify runs on the loop
	// goroutine right after the mutation that completed the challenge.
	var pending string
	m.SetCodeHandler(func(code string) { pending = code })

	// "back" returns to the phone step, so the two steps sit in one loop.
	for m.Step() == model.StepPhone || m.Step() == model.StepCode {
		for m.Step() == model.StepPhone {
			raw, err := readLine("phone: ")
			if err != nil {
				return err
			}
			if err := m.SubmitPhone(ctx, raw); err != nil {
				if errors.Is(err, errs.ErrInvalidPhone) {
					fmt.Println("enter all 11 digits, e.g. +7 (903) 123-45-67")
					continue
				}
				return err
			}
		}

		fmt.Printf("code sent to %s\n", m.PhoneDisplay())
		fmt.Println("enter the 6-digit code, or: resend, back")

		ticker := time.NewTicker(time.Second)
		for m.Step() == model.StepCode {
			select {
			case <-ticker.C:
				m.Challenge().Tick()

			case line := <-lines:
				switch line {
				case "resend":
					if !m.Challenge().CanResend() {
						fmt.Printf("wait %ds before resending\n", m.Challenge().Seconds())
						continue
					}
					if err := m.Resend(ctx); err != nil {
						ticker.Stop()
						return err
					}
					fmt.Printf("code re-sent to %s\n", m.PhoneDisplay())
				case "back":
					if err := m.Back(); err != nil {
						ticker.Stop()
						return err
					}
				default:
					m.Challenge().BulkFill(line)
					if pending == "" {
						fmt.Println("enter the full 6-digit code")
						continue
					}
					code := pending
					pending = ""
					if err := m.Verify(ctx, code); err != nil {
						if errors.Is(err, errs.ErrCodeRejected) {
							fmt.Println("invalid or expired code, try again")
							continue
						}
						if errors.Is(err, errs.ErrTooManyAttempts) {
							fmt.Println("too many failed attempts, resend a new code")
							continue
						}
						ticker.Stop()
						return err
					}
				}

			case err := <-scanErr:
				ticker.Stop()
				if err == nil {
					err = errors.New("input closed")
				}
				return err

			case <-ctx.Done():
				ticker.Stop()
				return ctx.Err()
			}
		}
		ticker.Stop()
	}

	// Profile step for first-time sign-ins.
	for m.Step() == model.StepProfile {
		nickname, err := readLine("display name: ")
		if err != nil {
			return err
		}
		username, err := readLine("username: ")
		if err != nil {
			return err
		}
		if err := m.CompleteSetup(ctx, nickname, username); err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidNickname):
				fmt.Println("display name must not be blank")
			case errors.Is(err, errs.ErrInvalidUsername):
				fmt.Println("username must be 3-20 lowercase letters, digits or underscores")
			default:
				var se *errs.ServiceError
				if errors.As(err, &se) {
					fmt.Println(se.Message)
					continue
				}
				return err
			}
		}
	}

	if id, ok := m.Identity(); ok {
		fmt.Printf("logged in as %s (@%s), id %d\n", id.Nickname, id.Username, id.ID)
	}
	return nil
}
