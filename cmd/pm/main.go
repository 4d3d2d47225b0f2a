package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Hussein-Mazeh/shroombrella/internal/bio/toggle"
	"github.com/Hussein-Mazeh/shroombrella/internal/config"
	"github.com/Hussein-Mazeh/shroombrella/internal/db"
	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

const cliVersion = "0.2.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := secret.Harden(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer secret.Purge()

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println(cliVersion)
	case "list":
		err = runList(os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "session":
		err = runSession(os.Args[2:])
	case "journal":
		err = runJournal(os.Args[2:])
	case "bio":
		err = runBio(os.Args[2:])
	default:
		printUsage()
		secret.Purge()
		os.Exit(1)
	}
	handleError(err)
}

func handleError(err error) {
	if err == nil {
		return
	}
	secret.Purge()

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}
	if msg := service.UserMessage(err); msg != service.MsgUnexpected {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
	os.Exit(2)
}

// commonFlags are accepted by every command that touches vault files.
type commonFlags struct {
	configPath string
	dir        string
	logLevel   string
	cacheKey   bool
}

func (c *commonFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default <user config>/shroombrella/config.toml)")
	fs.StringVar(&c.dir, "dir", "", "vault directory")
	fs.StringVar(&c.logLevel, "log-level", "", "log level")
	fs.BoolVar(&c.cacheKey, "cache-key", false, "keep the derived key for the session instead of the master password")
}

// overrides turns set flags into a config layer. Unset flags stay zero so
// Merge leaves the loaded values alone.
func (c *commonFlags) overrides() config.Config {
	return config.Config{
		VaultDir:        c.dir,
		CacheSessionKey: c.cacheKey,
		Log:             config.Log{Level: c.logLevel},
	}
}

// app carries what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	paths   store.Paths
	svc     *service.Service
	journal *db.Journal
}

func newApp(flags commonFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Merge(flags.overrides()); err != nil {
		return nil, userError{msg: err.Error()}
	}

	log, err := logger.New("cli", cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, paths: cfg.Paths()}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithSessionKeyCache(cfg.CacheSessionKey),
	}
	if cfg.Journal {
		j, err := db.OpenJournal(cfg.JournalPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.JournalPath).Msg("journal disabled")
		} else {
			a.journal = j
			opts = append(opts, service.WithRecorder(j))
		}
	}
	if cfg.Biometric {
		opts = append(opts, service.WithUnlockGate(toggle.NewGate()))
	}
	a.svc = service.New(a.paths, opts...)
	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close journal")
		}
	}
}

// vaultPath maps --vault to a file: anything with a path separator or the
// vault extension is taken as a path, everything else as a vault name.
func vaultPath(paths store.Paths, target string) (string, error) {
	if target == "" {
		return "", userError{msg: "missing required flag: --vault"}
	}
	if strings.ContainsAny(target, `/\`) || strings.HasSuffix(target, "."+paths.Extension()) {
		return target, nil
	}
	p, err := paths.VaultPath(target)
	if err != nil {
		return "", userError{msg: fmt.Sprintf("invalid vault name: %s", target)}
	}
	return p, nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.bind(fs)

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	files, err := a.paths.List()
	if err != nil {
		return fmt.Errorf("list vaults: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no vaults in %s\n", a.paths.Dir)
		return nil
	}
	for _, f := range files {
		fmt.Printf("%s\t%s\n", store.NameFromPath(f), f)
	}
	return nil
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	var name string
	common.bind(fs)
	fs.StringVar(&name, "name", "", "vault name")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if name == "" {
		return userError{msg: "missing required flag: --name"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	master, err := promptNewMaster(a.cfg, a.log, "Master password: ", "Confirm master password: ")
	if err != nil {
		return err
	}
	defer master.Destroy()

	v, err := a.svc.Create(name, master)
	if err != nil {
		return err
	}
	fmt.Printf("created vault %s at %s\n", v.Name, v.Path)
	return nil
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	var target string
	var unlock bool
	common.bind(fs)
	fs.StringVar(&target, "vault", "", "vault name or path")
	fs.BoolVar(&unlock, "unlock", false, "decrypt and list services and logins")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	path, err := vaultPath(a.paths, target)
	if err != nil {
		return err
	}
	v, err := a.svc.Load(path)
	if err != nil {
		return err
	}

	hdr := v.File.Header
	fmt.Printf("name:     %s\n", v.Name)
	fmt.Printf("path:     %s\n", v.Path)
	fmt.Printf("version:  %d\n", hdr.Version)
	fmt.Printf("created:  %s\n", hdr.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if !unlock {
		return nil
	}

	master, err := promptSecret("Master password: ")
	if err != nil {
		return err
	}
	defer master.Destroy()

	set, err := a.svc.Unlock(v, master)
	if err != nil {
		return err
	}
	defer set.Wipe()

	fmt.Printf("entries:  %d\n", len(set))
	for i, c := range set {
		fmt.Printf("  %d\t%s\t%s\n", i, c.Service, c.Login)
	}
	return nil
}

func runSession(args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	var target string
	common.bind(fs)
	fs.StringVar(&target, "vault", "", "vault name or path")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	path, err := vaultPath(a.paths, target)
	if err != nil {
		return err
	}
	v, err := a.svc.Load(path)
	if err != nil {
		return err
	}

	master, err := promptSecret("Master password: ")
	if err != nil {
		return err
	}
	sess, err := a.svc.Open(v, master)
	master.Destroy()
	if err != nil {
		return err
	}
	defer sess.Close()

	sh := newShell(sess, os.Stdin, os.Stdout)
	sh.prompt = promptSecret
	sh.policy = func(pw *secret.Buffer) error { return checkNewMaster(a.cfg, a.log, pw) }
	sh.clip = newClipboard(a.cfg.ClipboardTTL, a.log)
	defer sh.clip.Clear()

	fmt.Println("session unlocked; type 'help' for commands")
	return sh.loop()
}

func runJournal(args []string) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	var name string
	var limit int
	common.bind(fs)
	fs.StringVar(&name, "vault", "", "only events for this vault name")
	fs.IntVar(&limit, "limit", 20, "maximum number of events; 0 lists all")

	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	if a.journal == nil {
		return userError{msg: "the journal is disabled"}
	}
	events, err := a.journal.Events(name, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "no events")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("%s  %-14s %-13s %s\n", ev.CreatedAt.Local().Format("2006-01-02 15:04:05"), ev.Action, ev.Outcome, ev.Vault)
	}
	return nil
}

// promptNewMaster reads a new master password twice and applies the
// configured policy.
func promptNewMaster(cfg *config.Config, log *logger.Logger, prompt, confirmPrompt string) (*secret.Buffer, error) {
	pw, err := promptPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("read master password: %w", err)
	}
	master := secret.New(pw)

	confirm, err := promptPassword(confirmPrompt)
	if err != nil {
		master.Destroy()
		return nil, fmt.Errorf("read confirmation password: %w", err)
	}
	defer zeroBytes(confirm)

	if !bytes.Equal(master.Bytes(), confirm) {
		master.Destroy()
		return nil, userError{msg: "passwords do not match"}
	}
	if err := checkNewMaster(cfg, log, master); err != nil {
		master.Destroy()
		return nil, err
	}
	return master, nil
}

func promptSecret(prompt string) (*secret.Buffer, error) {
	pw, err := promptPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return secret.New(pw), nil
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func zeroBytes(b []byte) {
	secret.Wipe(b)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: pm <command> [--config <file>] [--dir <vault-dir>] [--log-level <level>]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version")
	fmt.Fprintln(os.Stderr, "  list")
	fmt.Fprintln(os.Stderr, "  create --name <vault>")
	fmt.Fprintln(os.Stderr, "  show --vault <name|path> [--unlock]")
	fmt.Fprintln(os.Stderr, "  session --vault <name|path> [--cache-key]")
	fmt.Fprintln(os.Stderr, "  journal [--vault <name>] [--limit <n>]")
	fmt.Fprintln(os.Stderr, "  bio <enable|disable|status> --vault <name|path>")
}
