package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
	"github.com/Hussein-Mazeh/shroombrella/krypto"
)

// shell is the interactive loop over one unlocked session.
type shell struct {
	sess   *service.Session
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
	prompt func(string) (*secret.Buffer, error)
	policy func(*secret.Buffer) error
	clip   *clipboardSink
}

func newShell(sess *service.Session, in io.Reader, out io.Writer) *shell {
	return &shell{
		sess:   sess,
		in:     bufio.NewScanner(in),
		out:    out,
		errOut: os.Stderr,
		policy: func(*secret.Buffer) error { return nil },
	}
}

func (sh *shell) loop() error {
	for {
		fmt.Fprint(sh.out, "pm> ")
		if !sh.in.Scan() {
			if err := sh.in.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(sh.out)
			return nil
		}

		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		var err error
		switch cmd {
		case "help":
			sh.printHelp()
		case "list":
			err = sh.list()
		case "add":
			err = sh.add(args)
		case "edit":
			err = sh.edit(args)
		case "delete":
			err = sh.delete(args)
		case "reveal":
			err = sh.reveal(args)
		case "copy":
			err = sh.copy(args)
		case "gen":
			err = sh.gen(args)
		case "save":
			err = sh.save()
		case "passwd":
			err = sh.passwd()
		case "exit", "quit":
			if sh.sess.Dirty() {
				fmt.Fprintln(sh.errOut, "unsaved changes; run 'save' first or 'quit!' to discard them")
				continue
			}
			return nil
		case "quit!":
			return nil
		default:
			fmt.Fprintf(sh.errOut, "unknown command: %s\n", cmd)
		}
		sh.handleError(err)
	}
}

func (sh *shell) handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(sh.errOut, uerr.Error())
		return
	}
	if msg := service.UserMessage(err); msg != service.MsgUnexpected {
		fmt.Fprintln(sh.errOut, msg)
		return
	}

	fmt.Fprintf(sh.errOut, "error: %v\n", err)
}

func (sh *shell) list() error {
	entries, err := sh.sess.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, "(empty)")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(sh.out, "%3d  %-24s %s\n", e.Index, e.Service, e.Login)
	}
	return nil
}

func (sh *shell) add(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var svc, login string
	var gen bool
	var length int
	fs.StringVar(&svc, "service", "", "service name")
	fs.StringVar(&login, "login", "", "login")
	fs.BoolVar(&gen, "gen", false, "generate the password")
	fs.IntVar(&length, "length", krypto.DefaultPasswordLength, "generated password length")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid add arguments"}
	}
	if svc == "" || login == "" {
		return userError{msg: "add requires --service and --login"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	pw, err := sh.newPassword(gen, length)
	if err != nil {
		return err
	}

	d, err := sh.sess.NewDraft()
	if err != nil {
		pw.Destroy()
		return err
	}
	d.Service, d.Login = svc, login
	d.SetPassword(pw)
	if err := sh.sess.Add(d); err != nil {
		d.Cancel()
		return err
	}

	fmt.Fprintf(sh.out, "added %s/%s (unsaved)\n", svc, login)
	return nil
}

func (sh *shell) edit(args []string) error {
	if len(args) == 0 {
		return userError{msg: "edit requires an entry index"}
	}
	idx, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var svc, login string
	var password, gen bool
	var length int
	fs.StringVar(&svc, "service", "", "new service name")
	fs.StringVar(&login, "login", "", "new login")
	fs.BoolVar(&password, "password", false, "prompt for a new password")
	fs.BoolVar(&gen, "gen", false, "generate a new password")
	fs.IntVar(&length, "length", krypto.DefaultPasswordLength, "generated password length")

	if err := fs.Parse(args[1:]); err != nil {
		return userError{msg: "invalid edit arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}
	if svc == "" && login == "" && !password && !gen {
		return userError{msg: "nothing to change; use --service, --login, --password or --gen"}
	}

	d, err := sh.sess.EditDraft(idx)
	if err != nil {
		return err
	}
	if svc != "" {
		d.Service = svc
	}
	if login != "" {
		d.Login = login
	}
	if password || gen {
		pw, err := sh.newPassword(gen, length)
		if err != nil {
			d.Cancel()
			return err
		}
		d.SetPassword(pw)
	}
	if err := sh.sess.Update(idx, d); err != nil {
		d.Cancel()
		return err
	}

	fmt.Fprintf(sh.out, "updated entry %d (unsaved)\n", idx)
	return nil
}

func (sh *shell) delete(args []string) error {
	idx, err := singleIndex("delete", args)
	if err != nil {
		return err
	}
	if err := sh.sess.Delete(idx); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "deleted entry %d (unsaved)\n", idx)
	return nil
}

func (sh *shell) reveal(args []string) error {
	idx, err := singleIndex("reveal", args)
	if err != nil {
		return err
	}
	pw, err := sh.sess.Reveal(idx)
	if err != nil {
		return err
	}
	defer pw.Destroy()

	fmt.Fprintf(sh.out, "%s\n", pw.Bytes())
	return nil
}

func (sh *shell) copy(args []string) error {
	idx, err := singleIndex("copy", args)
	if err != nil {
		return err
	}
	if sh.clip == nil {
		return userError{msg: "no clipboard available"}
	}
	pw, err := sh.sess.Reveal(idx)
	if err != nil {
		return err
	}
	defer pw.Destroy()

	if err := sh.clip.Copy(pw.Bytes()); err != nil {
		return err
	}
	if sh.clip.ttl > 0 {
		fmt.Fprintf(sh.out, "copied; clipboard clears in %s\n", sh.clip.ttl)
	} else {
		fmt.Fprintln(sh.out, "copied")
	}
	return nil
}

func (sh *shell) gen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var length int
	fs.IntVar(&length, "length", krypto.DefaultPasswordLength, "password length")
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid gen arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}
	if length <= 0 {
		return userError{msg: "--length must be positive"}
	}

	raw, err := krypto.GeneratePassword(length, krypto.Alphanumeric)
	if err != nil {
		return err
	}
	pw := secret.New(raw)
	defer pw.Destroy()

	fmt.Fprintf(sh.out, "%s\n", pw.Bytes())
	return nil
}

func (sh *shell) save() error {
	if err := sh.sess.Save(); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "saved %s\n", sh.sess.Path())
	return nil
}

func (sh *shell) passwd() error {
	if sh.sess.Dirty() {
		fmt.Fprintln(sh.errOut, "note: unsaved changes are written with the new password")
	}
	pw, err := sh.prompt("New master password: ")
	if err != nil {
		return err
	}
	defer pw.Destroy()

	confirm, err := sh.prompt("Confirm new master password: ")
	if err != nil {
		return err
	}
	defer confirm.Destroy()

	if !pw.Equal(confirm) {
		return userError{msg: "passwords do not match"}
	}
	if err := sh.policy(pw); err != nil {
		return err
	}
	if err := sh.sess.ChangeMasterPassword(pw); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "master password changed")
	return nil
}

// newPassword generates a password or prompts for one twice. The caller
// owns the result.
func (sh *shell) newPassword(gen bool, length int) (*secret.Buffer, error) {
	if gen {
		if length <= 0 {
			return nil, userError{msg: "--length must be positive"}
		}
		raw, err := krypto.GeneratePassword(length, krypto.Alphanumeric)
		if err != nil {
			return nil, err
		}
		return secret.New(raw), nil
	}

	pw, err := sh.prompt("Password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := sh.prompt("Confirm: ")
	if err != nil {
		pw.Destroy()
		return nil, err
	}
	defer confirm.Destroy()

	if !pw.Equal(confirm) {
		pw.Destroy()
		return nil, userError{msg: "passwords do not match"}
	}
	return pw, nil
}

func singleIndex(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, userError{msg: fmt.Sprintf("%s requires exactly one entry index", cmd)}
	}
	return parseIndex(args[0])
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, userError{msg: fmt.Sprintf("invalid entry index: %s", s)}
	}
	return n, nil
}

func (sh *shell) printHelp() {
	fmt.Fprintln(sh.out, "Commands:")
	fmt.Fprintln(sh.out, "  list")
	fmt.Fprintln(sh.out, "  add --service <name> --login <login> [--gen [--length n]]")
	fmt.Fprintln(sh.out, "  edit <index> [--service <name>] [--login <login>] [--password | --gen [--length n]]")
	fmt.Fprintln(sh.out, "  delete <index>")
	fmt.Fprintln(sh.out, "  reveal <index>")
	fmt.Fprintln(sh.out, "  copy <index>")
	fmt.Fprintln(sh.out, "  gen [--length n]")
	fmt.Fprintln(sh.out, "  save")
	fmt.Fprintln(sh.out, "  passwd")
	fmt.Fprintln(sh.out, "  exit | quit | quit!")
}
