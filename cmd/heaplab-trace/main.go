// Command heaplab-trace replays an allocator trace against the mem
// allocator and reports utilization and consistency at the end.
//
// A trace is a text file, one operation per line:
//
//	a <id> <size>   allocate <size> bytes, remember the pointer as <id>
//	f <id>          free the pointer remembered as <id>
//	r <id> <size>   reallocate the pointer remembered as <id> to <size> bytes
//
// Blank lines and lines starting with # are ignored.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	mem "github.com/go-heaplab/heaplab"
	"github.com/go-heaplab/heaplab/heapfile"
	"github.com/go-heaplab/heaplab/trace"
)

var (
	oTrace   = flag.String("f", "", "trace file (default: stdin)")
	oHeap    = flag.Int("heap", 64<<20, "bytes reserved for the simulated heap")
	oVerbose = flag.Bool("v", false, "log every operation")
	oCheck   = flag.Bool("check", true, "run the consistency checker after every operation")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	in := io.Reader(os.Stdin)
	if *oTrace != "" {
		f, err := os.Open(*oTrace)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	p, err := heapfile.NewMmapProvider(*oHeap)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	a := mem.New(p)
	if *oVerbose {
		a.Logger = trace.Writer{W: os.Stderr}
	}
	if err := a.Init(); err != nil {
		log.Fatal(err)
	}

	live := map[string][]byte{}
	var nAlloc, nFree, nRealloc int
	requested := 0

	sc := bufio.NewScanner(in)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := fields[0]

		switch op {
		case "a":
			id, size := mustID(lineno, fields, 1), mustInt(lineno, fields, 2)
			b, err := a.Malloc(size)
			if err != nil {
				log.Fatalf("line %d: malloc %d: %v", lineno, size, err)
			}
			live[id] = b
			requested += size
			nAlloc++
		case "f":
			id := mustID(lineno, fields, 1)
			b, ok := live[id]
			if !ok {
				log.Fatalf("line %d: free of unknown id %q", lineno, id)
			}
			if err := a.Free(b); err != nil {
				log.Fatalf("line %d: free %q: %v", lineno, id, err)
			}
			delete(live, id)
			nFree++
		case "r":
			id, size := mustID(lineno, fields, 1), mustInt(lineno, fields, 2)
			b, ok := live[id]
			if !ok {
				log.Fatalf("line %d: realloc of unknown id %q", lineno, id)
			}
			nb, err := a.Realloc(b, size)
			if err != nil {
				log.Fatalf("line %d: realloc %q to %d: %v", lineno, id, size, err)
			}
			live[id] = nb
			requested += size
			nRealloc++
		default:
			log.Fatalf("line %d: unrecognized op %q", lineno, op)
		}

		if *oCheck {
			a.Check()
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}

	inUse := p.Hi() - p.Lo()
	fmt.Printf("ops: %d alloc, %d free, %d realloc\n", nAlloc, nFree, nRealloc)
	fmt.Printf("live blocks: %d\n", len(live))
	fmt.Printf("heap grown to: %d bytes\n", inUse)
	if inUse > 0 {
		fmt.Printf("utilization: %.1f%%\n", 100*float64(requested)/float64(inUse))
	}
	a.Check()
	fmt.Println("consistency: ok")
}

func mustInt(lineno int, fields []string, i int) int {
	if i >= len(fields) {
		log.Fatalf("line %d: missing field %d", lineno, i)
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		log.Fatalf("line %d: %v", lineno, err)
	}
	return n
}

func mustID(lineno int, fields []string, i int) string {
	if i >= len(fields) {
		log.Fatalf("line %d: missing field %d", lineno, i)
	}
	return fields[i]
}
