// Command relstore is an interactive driver over the storage engine: a
// readline REPL dispatching table/index operations directly (there is no
// SQL layer here — operations are invoked by name, the way the engine's
// public contract names them), plus an optional background housekeeping
// daemon that periodically flushes every catalogued table.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robfig/cron/v3"

	"github.com/relstore/engine/internal/btree"
	"github.com/relstore/engine/internal/config"
	"github.com/relstore/engine/internal/engine"
	"github.com/relstore/engine/internal/engineerr"
	"github.com/relstore/engine/internal/record"
)

// History is an append-only, file-backed command history, loaded eagerly
// so readline's up-arrow recall works from the first keystroke.
type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History { return &History{path: path} }

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, line); err != nil {
		return err
	}
	h.lines = append(h.lines, line)
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".relstore_history"
	}
	return filepath.Join(home, ".relstore_history")
}

func main() {
	var (
		dataDir      = flag.String("data", "./data", "data directory")
		configPath   = flag.String("config", "", "path to a YAML config file (overrides -data)")
		histPath     = flag.String("history", defaultHistoryPath(), "history file path")
		housekeep    = flag.Bool("housekeep", false, "run the background flush daemon instead of the REPL")
		housekeepSpec = flag.String("housekeep-schedule", "", "cron schedule for -housekeep (default: the config's housekeeping schedule)")
	)
	flag.Parse()

	cfg := config.Default()
	cfg.Storage.DataDir = *dataDir
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	eng, err := engine.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	if *housekeep {
		schedule := cfg.Housekeeping.Schedule
		if *housekeepSpec != "" {
			schedule = *housekeepSpec
		}
		runHousekeeping(eng, schedule)
		return
	}

	runREPL(eng, *histPath)
}

// runHousekeeping flushes every catalogued table on the given cron
// schedule until interrupted, opening any table that is not open yet.
// Indexes are not flushed. It never exits on its own; a process manager
// is expected to own its lifecycle.
func runHousekeeping(eng *engine.Engine, spec string) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		for name := range eng.Manifest.Tables {
			tbl, err := eng.OpenTable(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "housekeep: open %s: %v\n", name, err)
				continue
			}
			if err := tbl.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "housekeep: flush %s: %v\n", name, err)
			}
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "housekeep: bad schedule %q: %v\n", spec, err)
		os.Exit(1)
	}
	c.Run()
}

func runREPL(eng *engine.Engine, histPath string) {
	h := NewHistory(histPath)
	_ = h.Load(2000)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "relstore> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Println("relstore — type \\help for commands, \\q to quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "\\q" || line == "quit" || line == "exit" {
			return
		}
		if line == "\\help" {
			printHelp()
			continue
		}
		if line == "\\history" {
			h.Print(50)
			continue
		}

		_ = h.Append(line)
		_ = rl.SaveHistory(line)

		dispatch(eng, line)
	}
}

func (h *History) Print(last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	start := len(h.lines) - last
	for i := start; i < len(h.lines); i++ {
		fmt.Printf("%5d  %s\n", i+1, h.lines[i])
	}
}

func printHelp() {
	fmt.Println(`commands:
  createtable <name> <col:type[:len]>...     types: int, float, bool, string
  opentable <name>
  closetable <name>
  insert <name> <value>...
  get <name> <page> <slot>
  delete <name> <page> <slot>
  scan <name>
  createindex <name> <order>
  openindex <name>
  closeindex <name>
  insertkey <name> <key> <page> <slot>
  findkey <name> <key>
  deletekey <name> <key>
  scanindex <name>
  \history  \help  \q`)
}

func dispatch(eng *engine.Engine, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "createtable":
		err = cmdCreateTable(eng, args)
	case "opentable":
		err = cmdOpenTable(eng, args)
	case "closetable":
		err = withName(args, eng.CloseTable)
	case "insert":
		err = cmdInsert(eng, args)
	case "get":
		err = cmdGet(eng, args)
	case "delete":
		err = cmdDelete(eng, args)
	case "scan":
		err = cmdScan(eng, args)
	case "createindex":
		err = cmdCreateIndex(eng, args)
	case "openindex":
		err = withName(args, func(name string) error { _, e := eng.OpenIndex(name); return e })
	case "closeindex":
		err = withName(args, eng.CloseIndex)
	case "insertkey":
		err = cmdInsertKey(eng, args)
	case "findkey":
		err = cmdFindKey(eng, args)
	case "deletekey":
		err = cmdDeleteKey(eng, args)
	case "scanindex":
		err = cmdScanIndex(eng, args)
	default:
		fmt.Printf("unknown command: %s (try \\help)\n", cmd)
		return
	}
	if err != nil {
		fmt.Printf("error: %s (%v)\n", engineerr.Classify(err), err)
	}
}

func withName(args []string, f func(string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("expected a name argument")
	}
	return f(args[0])
}

func cmdCreateTable(eng *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: createtable <name> <col:type[:len]>...")
	}
	schema := record.Schema{}
	for _, spec := range args[1:] {
		parts := strings.Split(spec, ":")
		attr := record.Attribute{Name: parts[0]}
		if len(parts) < 2 {
			return fmt.Errorf("bad column spec %q", spec)
		}
		switch strings.ToLower(parts[1]) {
		case "int":
			attr.Type = record.TypeInt
		case "float":
			attr.Type = record.TypeFloat
		case "bool":
			attr.Type = record.TypeBool
		case "string":
			attr.Type = record.TypeString
			if len(parts) < 3 {
				return fmt.Errorf("string column %q needs a length", spec)
			}
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return err
			}
			attr.Length = n
		default:
			return fmt.Errorf("unknown type %q", parts[1])
		}
		schema.Attrs = append(schema.Attrs, attr)
	}
	if err := eng.CreateTable(args[0], schema); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdOpenTable(eng *engine.Engine, args []string) error {
	return withName(args, func(name string) error {
		_, err := eng.OpenTable(name)
		if err == nil {
			fmt.Println("OK")
		}
		return err
	})
}

func cmdInsert(eng *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: insert <name> <value>...")
	}
	tbl, err := eng.OpenTable(args[0])
	if err != nil {
		return err
	}
	values, err := coerceValues(tbl.Schema, args[1:])
	if err != nil {
		return err
	}
	rid, err := tbl.InsertRecord(values)
	if err != nil {
		return err
	}
	fmt.Printf("OK (%d,%d)\n", rid.Page, rid.Slot)
	return nil
}

func cmdGet(eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: get <name> <page> <slot>")
	}
	tbl, err := eng.OpenTable(args[0])
	if err != nil {
		return err
	}
	rid, err := parseRID(args[1], args[2])
	if err != nil {
		return err
	}
	rec, err := tbl.GetRecord(rid)
	if err != nil {
		return err
	}
	fmt.Println(rec.Values)
	return nil
}

func cmdDelete(eng *engine.Engine, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: delete <name> <page> <slot>")
	}
	tbl, err := eng.OpenTable(args[0])
	if err != nil {
		return err
	}
	rid, err := parseRID(args[1], args[2])
	if err != nil {
		return err
	}
	if err := tbl.DeleteRecord(rid); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdScan(eng *engine.Engine, args []string) error {
	return withName(args, func(name string) error {
		tbl, err := eng.OpenTable(name)
		if err != nil {
			return err
		}
		s := tbl.StartScan(record.AlwaysTrue{})
		for {
			rec, err := s.Next()
			if errors.Is(err, record.ErrNoMoreTuples) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("(%d,%d) %v\n", rec.ID.Page, rec.ID.Slot, rec.Values)
		}
	})
}

func cmdCreateIndex(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: createindex <name> <order>")
	}
	order, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	if err := eng.CreateIndex(args[0], order); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdInsertKey(eng *engine.Engine, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: insertkey <name> <key> <page> <slot>")
	}
	idx, err := eng.OpenIndex(args[0])
	if err != nil {
		return err
	}
	key, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	rid, err := parseRID(args[2], args[3])
	if err != nil {
		return err
	}
	if err := idx.InsertKey(int32(key), rid); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdFindKey(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: findkey <name> <key>")
	}
	idx, err := eng.OpenIndex(args[0])
	if err != nil {
		return err
	}
	key, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	rid, err := idx.FindKey(int32(key))
	if err != nil {
		return err
	}
	fmt.Printf("(%d,%d)\n", rid.Page, rid.Slot)
	return nil
}

func cmdDeleteKey(eng *engine.Engine, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: deletekey <name> <key>")
	}
	idx, err := eng.OpenIndex(args[0])
	if err != nil {
		return err
	}
	key, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	return idx.DeleteKey(int32(key))
}

func cmdScanIndex(eng *engine.Engine, args []string) error {
	return withName(args, func(name string) error {
		idx, err := eng.OpenIndex(name)
		if err != nil {
			return err
		}
		s := idx.OpenTreeScan()
		defer s.CloseTreeScan()
		for {
			key, rid, err := s.NextEntry()
			if errors.Is(err, btree.ErrNoMoreEntries) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%d -> (%d,%d)\n", key, rid.Page, rid.Slot)
		}
	})
}

func parseRID(pageStr, slotStr string) (record.RID, error) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return record.RID{}, err
	}
	slot, err := strconv.Atoi(slotStr)
	if err != nil {
		return record.RID{}, err
	}
	return record.RID{Page: uint32(page), Slot: uint32(slot)}, nil
}

func coerceValues(schema record.Schema, raw []string) ([]any, error) {
	if len(raw) != len(schema.Attrs) {
		return nil, fmt.Errorf("expected %d values, got %d", len(schema.Attrs), len(raw))
	}
	values := make([]any, len(raw))
	for i, a := range schema.Attrs {
		switch a.Type {
		case record.TypeInt:
			n, err := strconv.Atoi(raw[i])
			if err != nil {
				return nil, err
			}
			values[i] = int32(n)
		case record.TypeFloat:
			f, err := strconv.ParseFloat(raw[i], 32)
			if err != nil {
				return nil, err
			}
			values[i] = float32(f)
		case record.TypeBool:
			b, err := strconv.ParseBool(raw[i])
			if err != nil {
				return nil, err
			}
			values[i] = b
		case record.TypeString:
			values[i] = raw[i]
		}
	}
	return values, nil
}
