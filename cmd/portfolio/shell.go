package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/admin"
)

// AdminShell is a line-oriented front end over admin.Editor: the same
// load, edit and save workflow as the admin panel.
type AdminShell struct {
	editor *admin.Editor
	out    io.Writer
}

// NewAdminShell creates a new admin shell writing to out
func NewAdminShell(editor *admin.Editor, out io.Writer) *AdminShell {
	return &AdminShell{editor: editor, out: out}
}

// Run reads commands from in until exit, EOF or ctx is done.
func (s *AdminShell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	fmt.Fprintln(s.out, "=== Portfolio Admin Shell ===")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(s.out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "admin> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if !s.exec(ctx, input) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
	}
}

// exec runs one command line and reports whether the shell should continue.
func (s *AdminShell) exec(ctx context.Context, input string) bool {
	command, rest := cutWord(input)

	var err error
	switch command {
	case "help", "h":
		s.showHelp()
	case "exit", "quit", "q":
		return false
	case "collections":
		s.handleCollections()
	case "load":
		err = s.withCollection(rest, func(c portfolio.Collection, _ string) error {
			if err := s.editor.Load(ctx, c); err != nil {
				return err
			}
			s.printRows(c)
			return nil
		})
	case "rows", "ls":
		err = s.withCollection(rest, func(c portfolio.Collection, _ string) error {
			s.printRows(c)
			return nil
		})
	case "add":
		err = s.withCollection(rest, func(c portfolio.Collection, _ string) error {
			id, err := s.editor.AddRow(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Added row %s at index %d\n", id, len(s.editor.Rows(c))-1)
			return nil
		})
	case "set":
		err = s.withCollection(rest, s.handleSet)
	case "delete", "rm":
		err = s.withCollection(rest, func(c portfolio.Collection, args string) error {
			return s.handleDelete(ctx, c, args)
		})
	case "save":
		err = s.withCollection(rest, func(c portfolio.Collection, _ string) error {
			if err := s.editor.SaveAll(ctx, c); err != nil {
				return err
			}
			s.printRows(c)
			return nil
		})
	case "settings":
		if err = s.editor.LoadSettings(ctx); err == nil {
			s.printSettings()
		}
	case "show-settings":
		s.printSettings()
	case "setting":
		field, value := cutWord(rest)
		if field == "" {
			err = errors.New("usage: setting <field> <value>")
			break
		}
		err = s.editor.EditSettings(field, unescape(value))
	case "whatsapp":
		ddi, number := cutWord(rest)
		if ddi == "" || number == "" {
			err = errors.New("usage: whatsapp <ddi> <number>")
			break
		}
		s.editor.SetWhatsApp(ddi, number)
	case "save-settings":
		if err = s.editor.SaveSettings(ctx); err == nil {
			s.printSettings()
		}
	case "notice":
		if n, ok := s.editor.Notice(); ok {
			fmt.Fprintf(s.out, "[%s] %s\n", n.Kind, n.Message)
		} else {
			fmt.Fprintln(s.out, "No notice")
		}
		return true
	case "dismiss":
		s.editor.Dismiss()
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for available commands)\n", command)
		return true
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	if n, ok := s.editor.Notice(); ok && n.Kind == admin.NoticeSuccess {
		fmt.Fprintln(s.out, n.Message)
		s.editor.Dismiss()
	}
	return true
}

func (s *AdminShell) withCollection(args string, fn func(portfolio.Collection, string) error) error {
	name, rest := cutWord(args)
	if name == "" {
		return errors.New("missing collection (type 'collections' to list them)")
	}
	c, err := portfolio.ParseCollection(name)
	if err != nil {
		return err
	}
	return fn(c, rest)
}

func (s *AdminShell) handleCollections() {
	rows := make([][]string, 0, len(portfolio.ItemCollections))
	for _, c := range portfolio.ItemCollections {
		rows = append(rows, []string{string(c), strings.Join(portfolio.Fields(c), ", ")})
	}
	renderTable(s.out, []string{"Collection", "Fields"}, rows, nil)
}

func (s *AdminShell) handleSet(c portfolio.Collection, args string) error {
	indexArg, rest := cutWord(args)
	field, value := cutWord(rest)
	if indexArg == "" || field == "" {
		return errors.New("usage: set <collection> <index> <field> <value>")
	}
	index, err := strconv.Atoi(indexArg)
	if err != nil {
		return fmt.Errorf("invalid row index %q", indexArg)
	}
	return s.editor.EditField(c, index, field, unescape(value))
}

func (s *AdminShell) handleDelete(ctx context.Context, c portfolio.Collection, args string) error {
	ref, _ := cutWord(args)
	if ref == "" {
		return errors.New("usage: delete <collection> <index|row-id>")
	}

	var id admin.RowID
	if index, err := strconv.Atoi(ref); err == nil {
		rows := s.editor.Rows(c)
		if index < 0 || index >= len(rows) {
			return fmt.Errorf("%w: %s[%d]", admin.ErrRowNotFound, c, index)
		}
		id = rows[index].ID
	} else if id, err = admin.ParseRowID(ref); err != nil {
		return err
	}

	if err := s.editor.DeleteRow(ctx, c, id); err != nil {
		return err
	}
	if _, pending := id.(admin.PendingID); pending {
		fmt.Fprintf(s.out, "Discarded unsaved row %s\n", id)
	}
	return nil
}

func (s *AdminShell) printRows(c portfolio.Collection) {
	rows := s.editor.Rows(c)
	if len(rows) == 0 {
		fmt.Fprintf(s.out, "No %s rows (use 'add %s')\n", c, c)
		return
	}

	fields := portfolio.Fields(c)
	headers := append([]string{"#", "ID", "Dirty"}, fields...)
	aligns := []columnAlignment{alignRight}
	table := make([][]string, 0, len(rows))
	for i, row := range rows {
		line := []string{strconv.Itoa(i), row.ID.String(), dirtyMark(row.Dirty)}
		for _, f := range fields {
			v, err := portfolio.FieldValue(row.Record, f)
			if err != nil {
				v = "?"
			}
			line = append(line, v)
		}
		table = append(table, line)
	}
	renderTable(s.out, headers, table, aligns)
}

func (s *AdminShell) printSettings() {
	draft := s.editor.Settings()
	rows := make([][]string, 0, len(portfolio.Fields(portfolio.CollectionSettings))+2)
	for _, f := range portfolio.Fields(portfolio.CollectionSettings) {
		v, err := portfolio.FieldValue(&draft.Settings, f)
		if err != nil {
			v = "?"
		}
		rows = append(rows, []string{f, v})
	}
	rows = append(rows,
		[]string{"whatsapp ddi", draft.WhatsAppDDI},
		[]string{"whatsapp number", draft.WhatsAppNumber},
	)
	renderTable(s.out, []string{"Field", "Value"}, rows, nil)
}

func (s *AdminShell) showHelp() {
	help := `
Available Commands:

  collections                         List collections and their fields
  load <collection>                   Load stored rows into the sheet
  rows, ls <collection>               Show the sheet
  add <collection>                    Append a blank row (saved with 'save')
  set <collection> <i> <field> <v>    Edit a field of row i ('\n' separates list items)
  delete, rm <collection> <i|id>      Delete a row (stored rows are deleted at once)
  save <collection>                   Insert new rows and update edited ones

  settings                            Load settings into the draft
  show-settings                       Show the settings draft
  setting <field> <value>             Edit a settings field
  whatsapp <ddi> <number>             Set the WhatsApp dialing code and number
  save-settings                       Save the settings draft

  notice                              Show the current notice
  dismiss                             Clear the current notice
  help, h                             Show this help message
  exit, quit, q                       Exit admin shell

Examples:
  load long_videos
  set long_videos 0 youtube_url https://youtu.be/dQw4w9WgXcQ
  set pricing_packages 1 features_en 4K export\nColor grading
  whatsapp 55 11 99999-9999
`
	fmt.Fprintln(s.out, help)
}

// cutWord splits off the first whitespace-delimited word.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func unescape(v string) string {
	return strings.ReplaceAll(v, `\n`, "\n")
}

func dirtyMark(dirty bool) string {
	if dirty {
		return "*"
	}
	return ""
}
