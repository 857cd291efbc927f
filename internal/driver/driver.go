// Package driver runs the interactive conversation loop: it reads a request,
// talks to the model, writes the files of each reply and installs the
// modules the reply declares.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"devai/chat"
	"devai/git"
	"devai/internal/materialize"
	"devai/internal/project"
	"devai/internal/response"
	"devai/internal/runner"
	"devai/llm"
	"devai/logging"
	"devai/tui"
)

// DefaultCreationPhrase switches a request into the new-app flow.
const DefaultCreationPhrase = "create a"

const (
	greeting   = "Dev AI: Hello, I am your AI agent. How can I help you with development?\nYou:"
	nextPrompt = "Dev AI: I am ready for the next task.\nYou:"
	namePrompt = "What is the app name?"
)

// State is the position of the driver in the conversation loop.
type State int

const (
	AwaitingInput State = iota
	Scaffolding
	AwaitingModelReply
	Materializing
	InstallingDependencies
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Scaffolding:
		return "scaffolding"
	case AwaitingModelReply:
		return "awaiting_model_reply"
	case Materializing:
		return "materializing"
	case InstallingDependencies:
		return "installing_dependencies"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FileWriter writes parsed entries below a root.
type FileWriter interface {
	WriteFiles(root string, entries []response.FileEntry) []materialize.Result
}

// Scaffolder generates a new app.
type Scaffolder interface {
	Create(ctx context.Context, appName string) error
}

// Installer installs modules into a directory.
type Installer interface {
	Install(ctx context.Context, dir string, specs []response.DependencySpec) error
}

// Snapshotter commits written files; git.Snapshot satisfies it.
type Snapshotter func(dir string, files []string, message string) (*git.CommitInfo, error)

// Driver owns one conversation. It is not safe for concurrent use.
type Driver struct {
	adapter    llm.LLMAdapter
	prompter   tui.Prompter
	session    *chat.Session
	files      FileWriter
	scaffolder Scaffolder
	installer  Installer
	snapshot   Snapshotter
	out        io.Writer
	logger     *slog.Logger
	workspace  string
	streaming  bool
	phrase     string
	state      State
	turns      int
}

// New creates a Driver with defaults: a fresh session without transcript,
// files written relative to the working directory, npm and the default
// scaffold command, streaming on, no commits and no output.
func New(adapter llm.LLMAdapter, prompter tui.Prompter) *Driver {
	logger := logging.Nop()
	run := runner.New(nil, logger)
	return &Driver{
		adapter:    adapter,
		prompter:   prompter,
		session:    chat.NewSession(llm.SystemPrompt, ""),
		files:      materialize.NewOS(".", logger),
		scaffolder: project.NewScaffolder(run, project.DefaultScaffoldCommand, project.DefaultScaffoldArgs),
		installer:  project.NewInstaller(run, "npm"),
		out:        io.Discard,
		logger:     logger,
		streaming:  true,
		phrase:     DefaultCreationPhrase,
		state:      AwaitingInput,
	}
}

// WithSession replaces the conversation session.
func (d *Driver) WithSession(session *chat.Session) *Driver {
	d.session = session
	return d
}

// WithFiles sets where reply files are written.
func (d *Driver) WithFiles(files FileWriter) *Driver {
	d.files = files
	return d
}

// WithProject sets the app generator and the module installer.
func (d *Driver) WithProject(scaffolder Scaffolder, installer Installer) *Driver {
	d.scaffolder = scaffolder
	d.installer = installer
	return d
}

// WithSnapshots commits written files after every reply. nil disables it.
func (d *Driver) WithSnapshots(snapshot Snapshotter) *Driver {
	d.snapshot = snapshot
	return d
}

// WithOutput sets where replies and status lines are printed.
func (d *Driver) WithOutput(out io.Writer) *Driver {
	d.out = out
	return d
}

// WithLogger sets the structured logger.
func (d *Driver) WithLogger(logger *slog.Logger) *Driver {
	d.logger = logger
	return d
}

// WithWorkspace sets the directory that relative roots resolve against. It
// must match the base directory of the FileWriter.
func (d *Driver) WithWorkspace(dir string) *Driver {
	d.workspace = dir
	return d
}

// WithStreaming chooses between streamed and buffered model replies.
func (d *Driver) WithStreaming(streaming bool) *Driver {
	d.streaming = streaming
	return d
}

// WithCreationPhrase sets the phrase that starts the new-app flow. Matching
// ignores case; an empty phrase keeps the default.
func (d *Driver) WithCreationPhrase(phrase string) *Driver {
	if strings.TrimSpace(phrase) != "" {
		d.phrase = phrase
	}
	return d
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Session returns the conversation session.
func (d *Driver) Session() *chat.Session {
	return d.session
}

func (d *Driver) setState(state State) {
	if d.state != state {
		d.logger.Debug("driver state", "from", d.state.String(), "to", state.String())
	}
	d.state = state
}

// Run loops until the user submits empty input or interrupts the prompt.
// A failing turn is logged and reported, and the loop asks again.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("session started", "session", d.session.ID(), "model", d.adapter.GetModelName())
	defer d.setState(Done)

	for {
		d.setState(AwaitingInput)
		label := nextPrompt
		if d.turns == 0 {
			label = greeting
		}

		input, err := d.prompter.Ask(ctx, label)
		if err != nil {
			if errors.Is(err, tui.ErrInterrupted) {
				d.logger.Info("session interrupted", "session", d.session.ID())
				fmt.Fprintln(d.out, "Thank you. Goodbye.")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			d.logger.Info("session ended", "session", d.session.ID(), "turns", d.turns)
			fmt.Fprintln(d.out, "Thank you. Goodbye.")
			return nil
		}

		d.turns++
		if err := d.Turn(ctx, input); err != nil {
			if errors.Is(err, tui.ErrInterrupted) {
				d.logger.Info("session interrupted", "session", d.session.ID(), "state", d.state.String())
				fmt.Fprintln(d.out, "Thank you. Goodbye.")
				return nil
			}
			d.logger.Error("turn failed", "session", d.session.ID(), "state", d.state.String(), "error", err)
			fmt.Fprintln(d.out, tui.Failure(err.Error()))
		}
	}
}

// Turn handles one request. Requests containing the creation phrase go
// through scaffold, plan, per-step code and dependency requests; anything
// else is sent as is and its reply materialized in the workspace.
func (d *Driver) Turn(ctx context.Context, input string) error {
	if d.IsCreation(input) {
		return d.createApp(ctx, input)
	}

	reply, err := d.request(ctx, input)
	if err != nil {
		return err
	}
	d.materialize("", reply, firstLine(input))
	return d.installFrom(ctx, "", reply)
}

// IsCreation reports whether input asks for a new app.
func (d *Driver) IsCreation(input string) bool {
	return strings.Contains(strings.ToLower(input), strings.ToLower(d.phrase))
}

func (d *Driver) createApp(ctx context.Context, input string) error {
	appName, err := d.askAppName(ctx)
	if err != nil {
		return err
	}

	d.setState(Scaffolding)
	if err := d.scaffolder.Create(ctx, appName); err != nil {
		return err
	}

	fmt.Fprintln(d.out, tui.Info("Requesting development plan..."))
	reply, err := d.request(ctx, llm.PlanPrompt(input))
	if err != nil {
		return err
	}

	plan, err := response.ExtractPlan(reply)
	if err != nil {
		d.logger.Warn("plan block unusable", "error", err)
		fmt.Fprintln(d.out, tui.Failure("No usable plan in the reply; skipping code generation"))
	}

	steps := plan.Steps()
	for i, step := range steps {
		fmt.Fprintln(d.out, tui.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Title())))
		reply, err := d.request(ctx, llm.StepPrompt(string(step.Kind), step.Item.Name, step.Item.Description))
		if err != nil {
			return fmt.Errorf("%s: %w", step.Title(), err)
		}
		d.materialize(appName, reply, step.Title())
	}

	reply, err = d.request(ctx, llm.DependencyPrompt)
	if err != nil {
		return err
	}
	if err := d.installFrom(ctx, appName, reply); err != nil {
		return err
	}

	fmt.Fprintln(d.out, tui.Success(fmt.Sprintf("App %s created", appName)))
	return nil
}

// askAppName repeats the question until the name is usable.
func (d *Driver) askAppName(ctx context.Context) (string, error) {
	for {
		answer, err := d.prompter.Ask(ctx, namePrompt)
		if err != nil {
			return "", err
		}
		name, err := project.NormalizeAppName(answer)
		if err == nil {
			return name, nil
		}
		fmt.Fprintln(d.out, tui.Failure("App name is required!"))
	}
}

// request sends content as a user message and returns the full reply, which
// is echoed while it arrives and appended to the session.
func (d *Driver) request(ctx context.Context, content string) (string, error) {
	d.setState(AwaitingModelReply)
	if err := d.session.AddUser(content); err != nil {
		d.logger.Warn("transcript write failed", "error", err)
	}

	reply, err := llm.Collect(ctx, d.adapter, d.session.GetMessages(), d.streaming, d.out)
	fmt.Fprintln(d.out)
	if err != nil {
		d.logger.Error("model request failed", "model", d.adapter.GetModelName(), "received", len(reply), "error", err)
		return "", fmt.Errorf("model request failed: %w", err)
	}

	if err := d.session.AddAssistant(reply); err != nil {
		d.logger.Warn("transcript write failed", "error", err)
	}
	d.logger.Info("model replied", "model", d.adapter.GetModelName(), "bytes", len(reply))
	return reply, nil
}

// materialize writes the files of reply below root. Write failures are
// reported per file and never abort the turn.
func (d *Driver) materialize(root, reply, subject string) {
	d.setState(Materializing)
	entries := response.Parse(reply)
	if len(entries) == 0 {
		d.logger.Debug("reply declared no files")
		return
	}

	results := d.files.WriteFiles(root, entries)
	for _, result := range results {
		if result.OK() {
			fmt.Fprintln(d.out, tui.Success(result.Summary()))
		} else {
			fmt.Fprintln(d.out, tui.Failure(result.Summary()))
		}
	}

	if d.snapshot != nil {
		d.commit(root, materialize.WrittenPaths(results), subject)
	}
}

func (d *Driver) commit(root string, written []string, subject string) {
	if len(written) == 0 {
		return
	}
	files := make([]string, len(written))
	for i, path := range written {
		files[i] = filepath.Join(d.workspace, path)
	}

	info, err := d.snapshot(d.dir(root), files, "devai: "+subject)
	switch {
	case err == nil:
		d.logger.Info("files committed", "hash", info.Hash, "files", len(info.Files))
		fmt.Fprintln(d.out, tui.Dim(fmt.Sprintf("committed %s", info.ShortHash())))
	case errors.Is(err, git.ErrNotRepository), errors.Is(err, git.ErrNothingToCommit):
		d.logger.Debug("snapshot skipped", "reason", err)
	default:
		d.logger.Warn("snapshot failed", "error", err)
	}
}

// installFrom installs the modules declared in reply into root. A missing
// or malformed block means nothing to install; only the install itself can
// fail the turn.
func (d *Driver) installFrom(ctx context.Context, root, reply string) error {
	specs, err := response.ExtractDependencies(reply)
	if err != nil {
		if errors.Is(err, response.ErrNoJSONBlock) || errors.Is(err, response.ErrNoMatchingBlock) {
			d.logger.Debug("reply declared no modules")
		} else {
			d.logger.Warn("dependency block ignored", "error", err)
			fmt.Fprintln(d.out, tui.Failure("Ignoring malformed dependency block"))
		}
		return nil
	}
	if len(specs) == 0 {
		return nil
	}

	d.setState(InstallingDependencies)
	if err := d.installer.Install(ctx, d.dir(root), specs); err != nil {
		if errors.Is(err, project.ErrNothingToInstall) {
			return nil
		}
		return err
	}
	return nil
}

// dir resolves root against the workspace.
func (d *Driver) dir(root string) string {
	if d.workspace == "" {
		return root
	}
	return filepath.Join(d.workspace, root)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	const max = 60
	if r := []rune(line); len(r) > max {
		return string(r[:max])
	}
	return line
}
