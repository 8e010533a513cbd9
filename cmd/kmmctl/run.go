package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkmedia/kmmctl/internal/config"
	"github.com/parkmedia/kmmctl/internal/logging"
	"github.com/parkmedia/kmmctl/internal/parkmedia"
	"github.com/parkmedia/kmmctl/internal/ui"
	"github.com/parkmedia/kmmctl/internal/version"
)

// app is one kmmctl run with its resolved options and output streams
type app struct {
	opts   *config.Options
	stdout io.Writer
	stderr io.Writer

	// fancy renders results in boxes (pretty printing on a terminal)
	fancy bool

	// prompt reads a password interactively; nil when stdin is not a terminal
	prompt func(label string) (string, error)

	sessionsPath string
	registry     *config.Registry
}

func runRoot(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if len(args) > 0 {
		if err := flags.Set("method-name", args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if err := flags.Set("method-arguments", args[1]); err != nil {
			return err
		}
	}

	explicit, _ := flags.GetString("options-file")
	disabled, _ := flags.GetBool("no-options-file")
	optionsFile, err := config.FindOptionsFile(explicit, disabled)
	if err != nil {
		return parkmedia.NewConfigError(err.Error())
	}
	opts, err := config.Load(flags, optionsFile)
	if err != nil {
		return parkmedia.NewConfigError(err.Error())
	}

	logFile := opts.LogTo
	if strings.EqualFold(logFile, "stderr") {
		logFile = ""
	}
	if err := logging.Initialize(logging.Options{Level: opts.LogLevel, File: logFile}); err != nil {
		return parkmedia.NewConfigError(err.Error())
	}
	if optionsFile != "" {
		logging.Debug("Loaded options file", zap.String("path", optionsFile))
	}

	if opts.MethodName == "" && !wantsCookiePersistence(opts) {
		return cmd.Help()
	}

	sessionsPath, err := config.GetSessionsPath()
	if err != nil && (opts.SaveSession || opts.UseSavedSession) {
		return parkmedia.NewConfigError(err.Error())
	}

	a := &app{
		opts:         opts,
		stdout:       cmd.OutOrStdout(),
		stderr:       cmd.ErrOrStderr(),
		fancy:        opts.PrettyPrint && ui.IsTerminal(os.Stdout),
		sessionsPath: sessionsPath,
	}
	if ui.IsTerminal(os.Stdin) {
		a.prompt = ui.PromptPassword
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return a.run(ctx)
}

func wantsCookiePersistence(opts *config.Options) bool {
	return opts.SetCookieEnv || opts.SetCookieFile != "" || opts.SaveSession
}

// run resolves the session, calls the method and prints its result
func (a *app) run(ctx context.Context) error {
	opts := a.opts

	format, err := parkmedia.ParseOutputFormat(opts.Format)
	if err != nil {
		return err
	}

	var cmd *command
	if opts.MethodName != "" {
		if cmd, err = lookupCommand(opts.MethodName); err != nil {
			return err
		}
	}
	args, err := parseArguments(opts.MethodArguments)
	if err != nil {
		return err
	}

	client := a.newClient()

	if opts.SaveSession || opts.UseSavedSession {
		if a.registry, err = config.LoadRegistry(a.sessionsPath); err != nil {
			return parkmedia.NewConfigError(err.Error())
		}
	}
	cookie, source, err := opts.ResolveCookie(a.registry)
	if err != nil {
		return parkmedia.NewConfigError(err.Error())
	}
	if cookie != "" {
		logging.Debug("Using session cookie", zap.String("source", string(source)))
		client.SetCookie(cookie)
	}

	isLogin := cmd != nil && cmd.name == "login"
	if !isLogin {
		if cookie == "" || opts.ForceLogin {
			if err := a.login(ctx, client); err != nil {
				return err
			}
		}
		// Persisted whatever its source, including a supplied cookie
		if err := a.persistCookie(client.Cookie()); err != nil {
			return err
		}
	}

	if cmd == nil {
		return nil
	}

	res, err := cmd.run(ctx, &invocation{
		client:   client,
		args:     args,
		username: opts.Username,
		password: opts.Password,
	})
	if err != nil {
		return err
	}

	if isLogin {
		if client.Cookie() == "" {
			return a.loginRejected(client, format)
		}
		if err := a.persistCookie(client.Cookie()); err != nil {
			return err
		}
	}

	out, err := parkmedia.FormatResult(res, format, opts.PrettyPrint)
	if err != nil {
		return err
	}
	a.print(a.stdout, cmd.name, client, out)

	if env := client.LastResponse(); env != nil && env.StatusCode >= 500 {
		return parkmedia.NewHTTPError(env.StatusCode, fmt.Sprintf("%s failed: %s", cmd.name, env.Status))
	}
	if ok, known := client.Success(); known && !ok {
		logging.Warn("Unexpected status",
			zap.String("method", cmd.name),
			zap.Int("status", client.LastResponse().StatusCode),
			zap.Int("expected", client.SuccessCode()))
	}
	return nil
}

func (a *app) newClient() *parkmedia.Client {
	opts := a.opts
	client := parkmedia.NewClient(opts.ServerAddress, opts.ServerPort)
	client.SetBasePath(opts.BasePath)
	client.SetTimeout(opts.Timeout)
	client.ParseResponse = !opts.NoParse

	t := client.Transport()
	t.UserAgent = version.UserAgent()
	t.LogRequestBody = true
	t.LogResponseBody = true
	t.LogPrettyPrintBody = true
	if opts.Insecure {
		t.SetInsecureSkipVerify(true)
	}
	return client
}

// login obtains a fresh session cookie
func (a *app) login(ctx context.Context, client *parkmedia.Client) error {
	opts := a.opts
	password := opts.Password
	if password == "" && opts.Username != "" && a.prompt != nil {
		pw, err := a.prompt("Password for " + opts.Username)
		if err != nil {
			return parkmedia.NewConfigError(err.Error())
		}
		password = pw
	}

	logging.Info("Logging in", zap.String("server", client.Transport().String()), zap.String("username", opts.Username))
	cookie, err := client.Login(ctx, opts.Username, password)
	if err != nil {
		return err
	}
	if cookie == "" {
		format, _ := parkmedia.ParseOutputFormat(opts.Format)
		return a.loginRejected(client, format)
	}
	return nil
}

func (a *app) loginRejected(client *parkmedia.Client, format parkmedia.OutputFormat) error {
	status := 0
	if env := client.LastResponse(); env != nil {
		status = env.StatusCode
		if out, err := parkmedia.FormatResult(client.LastResult(), format, a.opts.PrettyPrint); err == nil && out != "" {
			a.print(a.stderr, "login", client, out)
		}
	}
	return parkmedia.NewHTTPError(status, "login failed: no session cookie was returned")
}

// persistCookie hands the cookie to the places selected by the options
func (a *app) persistCookie(cookie string) error {
	opts := a.opts
	if cookie == "" {
		return nil
	}
	if opts.SetCookieEnv {
		fmt.Fprintf(a.stderr, "export %s=%s\n", opts.CookieEnvName, shellQuote(cookie))
	}
	if opts.SetCookieFile != "" {
		if err := os.WriteFile(opts.SetCookieFile, []byte(cookie+"\n"), 0600); err != nil {
			return parkmedia.NewConfigError(fmt.Sprintf("failed to write cookie file: %v", err))
		}
		logging.Debug("Wrote cookie file", zap.String("path", opts.SetCookieFile))
	}
	if opts.SaveSession {
		if a.registry == nil {
			a.registry = config.NewRegistry()
		}
		a.registry.PutSession(opts.ServerAddress, opts.ServerPort, opts.Username, cookie)
		if err := a.registry.Save(a.sessionsPath); err != nil {
			return parkmedia.NewConfigError(err.Error())
		}
		logging.Debug("Saved session", zap.String("path", a.sessionsPath))
	}
	return nil
}

// shellQuote wraps s in single quotes for POSIX shells
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// print writes formatted output, boxed when running on a terminal with
// pretty printing enabled.
func (a *app) print(w io.Writer, name string, client *parkmedia.Client, out string) {
	env := client.LastResponse()
	if !a.fancy || env == nil {
		fmt.Fprintln(w, out)
		return
	}

	ok, _ := client.Success()
	header := ui.NewHeader(name, client.Transport().String()+client.BasePath,
		ui.Param{Key: "Status", Value: env.Status},
		ui.Param{Key: "Content-Type", Value: env.ContentType},
		ui.Param{Key: "Expected", Value: strconv.Itoa(client.SuccessCode())},
	)
	fmt.Fprintln(w, header.Render())
	fmt.Fprintln(w, ui.NewResponseResult(env.Status, env.StatusCode, ok, out).Render())
}

func printMethods(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tARGUMENTS\tDESCRIPTION")
	for _, c := range commandTable {
		args := c.args
		if args == "" {
			args = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.name, args, c.summary)
	}
	_ = tw.Flush()
}
