package apprun

import (
	"io"
	"strings"

	"github.com/urfave/cli/v2"
)

// Doc is the embedded documentation rendered by --help.
type Doc struct {
	Name        string
	Usage       string
	UsageText   string
	Description string
	Version     string
	Commands    []CommandDoc
	Flags       []Flag
}

// CommandDoc documents one command.
type CommandDoc struct {
	Name  string
	Usage string
}

// UsageRenderer prints help text.
type UsageRenderer interface {
	Render(w io.Writer, doc Doc) error
}

// Doc returns the documentation with name, version, commands and flags
// filled in from the App where WithDoc left them empty.
func (a *App) Doc() Doc {
	doc := a.doc
	if doc.Name == "" {
		doc.Name = a.name
	}
	if doc.Version == "" {
		doc.Version = a.version
	}
	if len(doc.Flags) == 0 {
		doc.Flags = a.flags
	}

	documented := make(map[string]bool, len(doc.Commands))
	for _, c := range doc.Commands {
		documented[c.Name] = true
	}
	for _, name := range a.Commands() {
		if !documented[name] {
			doc.Commands = append(doc.Commands, CommandDoc{Name: name})
		}
	}
	return doc
}

// RenderUsage writes the help text to the output writer.
func (a *App) RenderUsage() error {
	return a.usage.Render(a.out, a.Doc())
}

// CLIRenderer renders help with urfave/cli's application template.
type CLIRenderer struct{}

// Render implements UsageRenderer.
func (CLIRenderer) Render(w io.Writer, doc Doc) error {
	app := &cli.App{
		Name:            doc.Name,
		Usage:           doc.Usage,
		UsageText:       doc.UsageText,
		Description:     doc.Description,
		Version:         doc.Version,
		HideHelp:        true,
		HideHelpCommand: true,
		HideVersion:     true,
		Writer:          w,
		ErrWriter:       w,
	}
	if app.UsageText == "" {
		app.UsageText = defaultUsageText(doc)
	}
	for _, f := range doc.Flags {
		app.Flags = append(app.Flags, cliFlag(f))
	}
	for _, c := range doc.Commands {
		app.Commands = append(app.Commands, &cli.Command{Name: c.Name, Usage: c.Usage})
	}

	app.Setup()
	cli.HelpPrinter(w, cli.AppHelpTemplate, app)
	return nil
}

func defaultUsageText(doc Doc) string {
	var b strings.Builder
	b.WriteString(doc.Name)
	b.WriteString(" [options]")
	if len(doc.Commands) > 0 {
		b.WriteString(" command")
	}
	b.WriteString(" [key=value ...] [args ...]")
	return b.String()
}

func cliFlag(f Flag) cli.Flag {
	name := f.Long
	aliases := make([]string, 0, 1+len(f.Aliases))
	if f.Short != "" {
		if name == "" {
			name = f.Short
		} else {
			aliases = append(aliases, f.Short)
		}
	}
	aliases = append(aliases, f.Aliases...)

	if f.TakesValue {
		return &cli.StringFlag{Name: name, Aliases: aliases, Usage: f.Usage}
	}
	return &cli.BoolFlag{Name: name, Aliases: aliases, Usage: f.Usage}
}
