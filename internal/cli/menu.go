package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/csvbridge"
	"github.com/calvinalkan/medialib/internal/store"
	"github.com/calvinalkan/medialib/internal/xsd"

	flag "github.com/spf13/pflag"
)

const clearToken = "-"

// MenuCmd returns the menu command.
func MenuCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("menu", flag.ContinueOnError),
		Usage: "menu [kind]",
		Short: "Interactive menu",
		Long: `Browse and edit libraries interactively. Without a kind, a main menu
lists the enabled kinds. End input (Ctrl-D) or Ctrl-C to leave.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			p := newPrompter(a.stdin, o.Out())
			defer p.Close()

			m := &menu{ctx: ctx, a: a, io: o, p: p}

			kind := ""
			if len(args) > 0 {
				kind = args[0]
			}

			err := m.run(kind)
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		},
	}
}

type menu struct {
	ctx context.Context
	a   *app
	io  *IO
	p   Prompter
}

func (m *menu) run(kindName string) error {
	if kindName != "" {
		kind, err := m.a.kind(kindName)
		if err != nil {
			return err
		}

		return m.kindMenu(kind)
	}

	kinds := m.a.cfg.Kinds()

	options := make([]string, 0, len(kinds)+1)
	for _, k := range kinds {
		options = append(options, title(string(k)))
	}

	options = append(options, "Quit")

	for {
		i, err := m.choose("Main menu", options, -1)
		if err != nil {
			return err
		}

		if i == len(kinds) {
			return nil
		}

		err = m.kindMenu(kinds[i])
		if err != nil {
			return err
		}
	}
}

type menuAction struct {
	label string
	run   func(s *store.Store) error
}

func (m *menu) actions() []menuAction {
	return []menuAction{
		{"List", m.list},
		{"Search", m.search},
		{"Show", m.show},
		{"Add", m.add},
		{"Edit", m.edit},
		{"Remove", m.remove},
		{"Backup", m.backup},
		{"Restore", m.restore},
		{"Import CSV", m.importCSV},
		{"Export CSV", m.exportCSV},
		{"Validate", m.validate},
		{"Restore schema", m.restoreSchema},
	}
}

func (m *menu) kindMenu(kind catalog.Kind) error {
	s, err := m.a.storeFor(kind)
	if err != nil {
		return err
	}

	actions := m.actions()

	options := make([]string, 0, len(actions)+1)
	for _, act := range actions {
		options = append(options, act.label)
	}

	options = append(options, "Back")

	for {
		if err := m.ctx.Err(); err != nil {
			return err
		}

		i, err := m.choose(title(string(kind))+" library", options, -1)
		if err != nil {
			return err
		}

		if i == len(actions) {
			return nil
		}

		err = actions[i].run(s)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return err
		}

		if err != nil {
			m.io.ErrPrintln("error:", describe(err))
		}
	}
}

// choose prints numbered options and returns the picked index. An empty
// answer picks def when def >= 0.
func (m *menu) choose(heading string, options []string, def int) (int, error) {
	m.io.Println()
	m.io.Println(heading)

	for i, opt := range options {
		m.io.Printf("  %d) %s\n", i+1, opt)
	}

	prompt := "Choice: "
	if def >= 0 {
		prompt = fmt.Sprintf("Choice [%d]: ", def+1)
	}

	for {
		answer, err := m.p.Prompt(prompt)
		if err != nil {
			return 0, err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" && def >= 0 {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}

		m.io.Println("Invalid choice.")
	}
}

func (m *menu) pickSortField(s *store.Store, heading string) (catalog.SortField, error) {
	cfg := s.Codec().Config()

	options := make([]string, 0, len(cfg.Sortable))
	def := 0

	for i, sf := range cfg.Sortable {
		options = append(options, sf.Label)

		if sf.Name == cfg.DefaultSort {
			def = i
		}
	}

	i, err := m.choose(heading, options, def)
	if err != nil {
		return catalog.SortField{}, err
	}

	return cfg.Sortable[i], nil
}

func (m *menu) promptKey(s *store.Store) (string, error) {
	cfg := s.Codec().Config()
	label := cfg.Key

	if f, ok := catalog.FindField(s.Codec().Fields(), cfg.Key); ok {
		label = f.Label
	}

	for {
		key, err := m.p.Prompt(label + ": ")
		if err != nil {
			return "", err
		}

		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}
}

func (m *menu) list(s *store.Store) error {
	sf, err := m.pickSortField(s, "Sort by")
	if err != nil {
		return err
	}

	desc, err := m.p.Confirm("Descending?", false)
	if err != nil {
		return err
	}

	recs, err := s.GetAll(sf.Name, !desc)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		m.io.Println(emptyLibrary)

		return nil
	}

	printTable(m.io, sortColumns(s.Codec()), recs)

	return nil
}

func (m *menu) search(s *store.Store) error {
	sf, err := m.pickSortField(s, "Search in")
	if err != nil {
		return err
	}

	text, err := m.p.Prompt("Search text: ")
	if err != nil {
		return err
	}

	recs, err := s.Search(sf.Name, strings.TrimSpace(text), true)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		m.io.Printf("No items match %q.\n", strings.TrimSpace(text))

		return nil
	}

	printTable(m.io, sortColumns(s.Codec()), recs)

	return nil
}

func (m *menu) show(s *store.Store) error {
	key, err := m.promptKey(s)
	if err != nil {
		return err
	}

	rec, err := s.Get(key)
	if err != nil {
		return err
	}

	m.io.PrintLines(recordLines(s.Codec().Fields(), rec, "  "))

	return nil
}

func (m *menu) add(s *store.Store) error {
	rec, err := m.editRecord(s.Codec().Fields(), catalog.Record{})
	if err != nil {
		return err
	}

	key := rec.Get(s.Codec().Config().Key)

	keys, err := s.Keys()
	if err != nil {
		return err
	}

	if slices.Contains(keys, key) {
		m.io.Printf("An item with key %q already exists. Nothing was added.\n", key)

		return nil
	}

	err = m.a.locked(m.ctx, s, func() error { return s.Add(rec) })
	if err != nil {
		return err
	}

	m.io.Printf("Added %s.\n", key)

	return nil
}

func (m *menu) edit(s *store.Store) error {
	key, err := m.promptKey(s)
	if err != nil {
		return err
	}

	cur, err := s.Get(key)
	if err != nil {
		return err
	}

	m.io.Println("Press Enter to keep a value.")

	rec, err := m.editRecord(s.Codec().Fields(), cur)
	if err != nil {
		return err
	}

	return m.a.locked(m.ctx, s, func() error {
		return reportEdit(m.io, s, key, rec, s.Edit(key, rec))
	})
}

func (m *menu) remove(s *store.Store) error {
	key, err := m.promptKey(s)
	if err != nil {
		return err
	}

	_, err = s.Get(key)
	if err != nil {
		return err
	}

	ok, err := m.p.Confirm(fmt.Sprintf("Remove %s?", key), false)
	if err != nil || !ok {
		return err
	}

	err = m.a.locked(m.ctx, s, func() error { return s.Remove(key) })
	if err != nil {
		return err
	}

	m.io.Printf("Removed %s.\n", key)

	return nil
}

func (m *menu) backup(s *store.Store) error {
	err := s.Backup()
	if err != nil {
		return err
	}

	m.io.Printf("Backed up to %s.\n", s.BackupPath())

	return nil
}

func (m *menu) restore(s *store.Store) error {
	status, verr := s.ValidateBackup()
	if status != xsd.StatusValid {
		printStatus(m.io, status, verr)

		ok, err := m.p.Confirm("The backup is not valid. Restore anyway?", false)
		if err != nil || !ok {
			return err
		}
	}

	err := m.a.locked(m.ctx, s, s.Restore)
	if err != nil {
		return err
	}

	m.io.Println("Restored.")

	return nil
}

func (m *menu) importCSV(s *store.Store) error {
	path, err := m.p.Prompt("CSV file: ")
	if err != nil {
		return err
	}

	ok, err := m.p.Confirm("This replaces every item of the library. Continue?", false)
	if err != nil || !ok {
		return err
	}

	n, err := importCSV(m.ctx, m.a, s, m.a.path(strings.TrimSpace(path)))
	if err != nil {
		return err
	}

	m.io.Printf("Imported %d items.\n", n)

	return nil
}

func (m *menu) exportCSV(s *store.Store) error {
	path, err := m.p.Prompt("CSV file: ")
	if err != nil {
		return err
	}

	b, err := csvbridge.New(s, m.a.fs)
	if err != nil {
		return err
	}

	n, err := b.Export(m.a.path(strings.TrimSpace(path)))
	if err != nil {
		return err
	}

	m.io.Printf("Exported %d items.\n", n)

	return nil
}

func (m *menu) validate(s *store.Store) error {
	status, err := s.Validate()
	printStatus(m.io, status, err)

	return nil
}

func (m *menu) restoreSchema(s *store.Store) error {
	ok, err := m.p.Confirm("Overwrite the schema file?", false)
	if err != nil || !ok {
		return err
	}

	err = s.RestoreSchema()
	if err != nil {
		return err
	}

	m.io.Println("Schema restored.")

	return nil
}

// --- Item editor ---

// editRecord walks fields in order and returns cur with the answers
// applied. cur is not modified.
func (m *menu) editRecord(fields []catalog.Field, cur catalog.Record) (catalog.Record, error) {
	out := cur.Clone()

	for _, f := range fields {
		var err error

		switch {
		case f.Shape == catalog.Group:
			err = m.editGroup(f, &out)
		case f.Shape.IsList() && len(f.Values) > 0:
			err = m.editEnumList(f, &out)
		case f.Shape.IsList():
			err = m.editFreeList(f, &out)
		case len(f.Values) > 0:
			err = m.editEnum(f, &out)
		default:
			err = m.editScalar(f, &out)
		}

		if err != nil {
			return catalog.Record{}, err
		}
	}

	return out, nil
}

func (m *menu) editScalar(f catalog.Field, rec *catalog.Record) error {
	current := rec.Get(f.Name)

	prompt := f.Label
	if current != "" {
		prompt += " [" + current + "]"

		if !f.Required {
			prompt += " (" + clearToken + " clears)"
		}
	}

	for {
		answer, err := m.p.Prompt(prompt + ": ")
		if err != nil {
			return err
		}

		answer = strings.TrimSpace(answer)

		switch {
		case answer == "" && current == "" && f.Required:
			m.io.Printf("%s is required.\n", f.Label)

			continue
		case answer == "":
		case answer == clearToken && !f.Required:
			rec.Unset(f.Name)
		default:
			rec.Set(f.Name, answer)
		}

		return nil
	}
}

func (m *menu) editEnum(f catalog.Field, rec *catalog.Record) error {
	options := slices.Clone(f.Values)
	if !f.Required {
		options = append(options, "(none)")
	}

	def := slices.Index(f.Values, rec.Get(f.Name))
	if def < 0 && !f.Required {
		def = len(f.Values)
	}

	i, err := m.choose(f.Label, options, def)
	if err != nil {
		return err
	}

	if i == len(f.Values) {
		rec.Unset(f.Name)
	} else {
		rec.Set(f.Name, f.Values[i])
	}

	return nil
}

func (m *menu) editEnumList(f catalog.Field, rec *catalog.Record) error {
	current := rec.List(f.Name)

	m.io.Println()
	m.io.Println(f.Label)

	for i, v := range f.Values {
		m.io.Printf("  %d) %s\n", i+1, v)
	}

	prompt := "Numbers separated by spaces"
	if len(current) > 0 {
		prompt += " [" + strings.Join(current, listJoin) + "]"
	}

	for {
		answer, err := m.p.Prompt(prompt + ": ")
		if err != nil {
			return err
		}

		fields := strings.Fields(answer)
		if len(fields) == 0 {
			if len(current) == 0 && f.Required {
				m.io.Printf("%s is required.\n", f.Label)

				continue
			}

			return nil
		}

		picked, ok := pickValues(f.Values, fields)
		if !ok {
			m.io.Println("Invalid choice.")

			continue
		}

		rec.SetList(f.Name, picked)

		return nil
	}
}

func pickValues(values, answers []string) ([]string, bool) {
	var picked []string

	for _, a := range answers {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 || n > len(values) {
			return nil, false
		}

		if !slices.Contains(picked, values[n-1]) {
			picked = append(picked, values[n-1])
		}
	}

	return picked, true
}

func (m *menu) editFreeList(f catalog.Field, rec *catalog.Record) error {
	current := rec.List(f.Name)

	if len(current) > 0 {
		keep, err := m.p.Confirm(fmt.Sprintf("Keep %s (%s)?", f.Label, strings.Join(current, listJoin)), true)
		if err != nil || keep {
			return err
		}
	}

	item := f.Label
	if f.Item != "" {
		item = title(f.Item)
	}

	m.io.Printf("Enter %s one per line, empty line to finish.\n", f.Label)

	var values []string

	for {
		answer, err := m.p.Prompt("  " + item + ": ")
		if err != nil {
			return err
		}

		answer = strings.TrimSpace(answer)
		if answer != "" {
			values = append(values, answer)

			continue
		}

		if len(values) == 0 && f.Required {
			m.io.Printf("At least one %s is required.\n", item)

			continue
		}

		rec.SetList(f.Name, values)

		return nil
	}
}

func (m *menu) editGroup(f catalog.Field, rec *catalog.Record) error {
	var kept []catalog.Record

	for i, g := range rec.Group(f.Name) {
		choice, err := m.groupChoice(fmt.Sprintf("%s %d (%s): k)eep e)dit r)emove [k]: ", f.Label, i+1, groupSummary(f, g)))
		if err != nil {
			return err
		}

		switch choice {
		case "e":
			g, err = m.editRecord(f.Fields, g)
			if err != nil {
				return err
			}

			kept = append(kept, g)
		case "r":
		default:
			kept = append(kept, g)
		}
	}

	for {
		add, err := m.p.Confirm(fmt.Sprintf("Add %s?", strings.ToLower(f.Label)), len(kept) == 0 && f.Required)
		if err != nil {
			return err
		}

		if !add {
			if len(kept) == 0 && f.Required {
				m.io.Printf("At least one %s is required.\n", strings.ToLower(f.Label))

				continue
			}

			break
		}

		g, err := m.editRecord(f.Fields, catalog.Record{})
		if err != nil {
			return err
		}

		kept = append(kept, g)
	}

	rec.SetGroup(f.Name, kept)

	return nil
}

func (m *menu) groupChoice(prompt string) (string, error) {
	for {
		answer, err := m.p.Prompt(prompt)
		if err != nil {
			return "", err
		}

		switch answer = strings.ToLower(strings.TrimSpace(answer)); answer {
		case "", "k":
			return "k", nil
		case "e", "r":
			return answer, nil
		}
	}
}

func groupSummary(f catalog.Field, g catalog.Record) string {
	var parts []string

	for _, sub := range f.Fields {
		if v := strings.Join(g.Values(sub.Name), listJoin); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, "; ")
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}
