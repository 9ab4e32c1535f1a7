// Command heapcli is an interactive REPL over a HeapFile: a small
// demo/test driver for exercising insert/search/delete/range and
// inspecting buffer-pool behavior, external to the core store.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/heapcache/internal/config"
	"github.com/tuannm99/heapcache/internal/heapfile"
	"github.com/tuannm99/heapcache/internal/record"
	"github.com/tuannm99/heapcache/internal/replacer"
)

func buildPolicy(name string, poolSize int) (replacer.Policy, error) {
	switch strings.ToLower(name) {
	case "lru":
		return replacer.NewLRU(), nil
	case "mru":
		return replacer.NewMRU(), nil
	case "clock":
		return replacer.NewClock(poolSize), nil
	default:
		return nil, fmt.Errorf("heapcli: unknown policy %q (want lru, mru, or clock)", name)
	}
}

func main() {
	cfgPath := flag.String("config", "heapcache.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapcli: %v\n", err)
		os.Exit(1)
	}

	policy, err := buildPolicy(cfg.Store.Policy, cfg.Store.PoolSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapcli: %v\n", err)
		os.Exit(1)
	}

	hf, err := heapfile.Open(cfg.Store.DataFile, cfg.Store.DirectoryFile, cfg.Store.PoolSize, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapcli: open: %v\n", err)
		os.Exit(1)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "heapcli> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "heapcli: readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("heapcache: data=%s directory=%s pool=%d policy=%s\n",
		cfg.Store.DataFile, cfg.Store.DirectoryFile, cfg.Store.PoolSize, hf.Pool().ReplacementPolicyName())
	fmt.Println("commands: insert get hget del range stats flush dump policy quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if err := dispatch(hf, cmd, args); err != nil {
			if err == errQuit {
				return
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

var errQuit = fmt.Errorf("heapcli: quit")

func dispatch(hf *heapfile.HeapFile, cmd string, args []string) error {
	switch cmd {
	case "quit", "exit":
		return errQuit

	case "insert":
		if len(args) < 2 {
			return fmt.Errorf("usage: insert <key> <text>")
		}
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		payload := strings.Join(args[1:], " ")
		if err := hf.InsertRecord(record.New(key, []byte(payload))); err != nil {
			return err
		}
		fmt.Println("OK")

	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <key>")
		}
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		r, ok, err := hf.SearchRecord(key)
		if err != nil {
			return err
		}
		printRecord(r, ok)

	case "hget":
		if len(args) != 1 {
			return fmt.Errorf("usage: hget <key>")
		}
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		r, ok, err := hf.SearchRecordWithHash(key)
		if err != nil {
			return err
		}
		printRecord(r, ok)

	case "del":
		if len(args) != 1 {
			return fmt.Errorf("usage: del <key>")
		}
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		ok, err := hf.DeleteRecord(key)
		if err != nil {
			return err
		}
		fmt.Println(ok)

	case "range":
		if len(args) != 2 {
			return fmt.Errorf("usage: range <lo> <hi>")
		}
		lo, err := parseKey(args[0])
		if err != nil {
			return err
		}
		hi, err := parseKey(args[1])
		if err != nil {
			return err
		}
		records, err := hf.RangeSearch(lo, hi)
		if err != nil {
			return err
		}
		for _, r := range records {
			printRecord(r, true)
		}
		fmt.Printf("(%d records)\n", len(records))

	case "stats":
		p := hf.Pool()
		fmt.Printf("pool_size=%d hits=%d misses=%d hit_ratio=%.3f disk_reads=%d disk_writes=%d policy=%s\n",
			p.CurrentPoolSize(), p.HitCount(), p.MissCount(), p.HitRatio(), p.DiskReadCount(), p.DiskWriteCount(), p.ReplacementPolicyName())

	case "flush":
		if err := hf.FlushAll(); err != nil {
			return err
		}
		fmt.Println("OK")

	case "dump":
		return hf.PrintAllPages(os.Stdout)

	case "policy":
		fmt.Println(hf.Pool().ReplacementPolicyName())

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

func parseKey(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return int32(n), nil
}

func printRecord(r record.Record, ok bool) {
	if !ok {
		fmt.Println("(not found)")
		return
	}
	fmt.Printf("key=%d payload=%q\n", r.Key(), strings.TrimRight(string(r.Payload()), "\x00"))
}
