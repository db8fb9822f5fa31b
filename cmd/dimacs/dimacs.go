package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	commentLine = regexp.MustCompile(`^c(\s.*)?$`)
	cleanInput  = regexp.MustCompile(`\s\s+`)
)

// CNF holds the clauses of a SAT problem described in DIMACS format.
// Literals are non-zero integers; a negative literal is a negated
// variable.
// see: https://logic.pdmi.ras.ru/~basolver/dimacs.html
type CNF struct {
	numVariables int
	clauses      [][]int
}

func (d *CNF) NumVariables() int {
	return d.numVariables
}

func (d *CNF) Clauses() [][]int {
	out := make([][]int, len(d.clauses))
	for i, c := range d.clauses {
		out[i] = append([]int(nil), c...)
	}
	return out
}

// Graph holds the edges of an undirected graph in DIMACS edge format:
// a "p edge <vertices> <edges>" header followed by "e <u> <v>" lines.
type Graph struct {
	numVertices int
	edges       [][2]int
}

func (g *Graph) NumVertices() int {
	return g.numVertices
}

func (g *Graph) Edges() [][2]int {
	return append([][2]int(nil), g.edges...)
}

// header parses "p <kind> <n> <m>".
func header(line, kind string) (int, int, error) {
	fields := strings.Split(cleanInput.ReplaceAllString(line, " "), " ")
	if len(fields) != 4 || fields[1] != kind {
		return 0, 0, fmt.Errorf("invalid statement: (%s). Valid format is p %s <n> <m>", line, kind)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("invalid number (%s) in statement (%s)", fields[2], line)
	}
	m, err := strconv.Atoi(fields[3])
	if err != nil || m < 0 {
		return 0, 0, fmt.Errorf("invalid number (%s) in statement (%s)", fields[3], line)
	}
	return n, m, nil
}

// lines yields the trimmed, non-comment lines of r.
func lines(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || commentLine.MatchString(line) {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading dimacs data: %w", err)
	}
	return nil
}

// NewCNF parses a "p cnf" problem. Clauses end in 0 and may not span
// lines.
func NewCNF(r io.Reader) (*CNF, error) {
	var (
		d          *CNF
		numClauses int
	)
	clauseLine := regexp.MustCompile(`^(-?\d+\s+)*0$`)

	err := lines(r, func(line string) error {
		if strings.HasPrefix(line, "p ") {
			if d != nil {
				return fmt.Errorf("duplicate header: %s", line)
			}
			n, m, err := header(line, "cnf")
			if err != nil {
				return err
			}
			d = &CNF{numVariables: n, clauses: make([][]int, 0, m)}
			numClauses = m
			return nil
		}
		if !clauseLine.MatchString(line) {
			return fmt.Errorf("invalid dimacs command: %s", line)
		}
		if d == nil {
			return fmt.Errorf("invalid dimacs format: missing header 'p cnf <variables> <clauses>'")
		}
		fields := strings.Split(cleanInput.ReplaceAllString(line, " "), " ")
		clause := make([]int, 0, len(fields)-1)
		for _, f := range fields[:len(fields)-1] {
			lit, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("invalid clause (%s): %s is not a number", line, f)
			}
			if lit == 0 || lit > d.numVariables || -lit > d.numVariables {
				return fmt.Errorf("invalid clause (%s): %d is not a valid variable", line, lit)
			}
			clause = append(clause, lit)
		}
		if len(clause) == 0 {
			return fmt.Errorf("invalid clause (%s): empty", line)
		}
		d.clauses = append(d.clauses, clause)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if d == nil || d.numVariables == 0 || len(d.clauses) == 0 {
		return nil, fmt.Errorf("invalid format: no variables or clauses found")
	}
	if len(d.clauses) != numClauses {
		return nil, fmt.Errorf("invalid format: number of clauses in header differ from the total number of clauses")
	}
	return d, nil
}

// NewGraph parses a "p edge" graph. Vertices are numbered from 1.
func NewGraph(r io.Reader) (*Graph, error) {
	var (
		g        *Graph
		numEdges int
	)
	edgeLine := regexp.MustCompile(`^e\s+\d+\s+\d+$`)

	err := lines(r, func(line string) error {
		if strings.HasPrefix(line, "p ") {
			if g != nil {
				return fmt.Errorf("duplicate header: %s", line)
			}
			n, m, err := header(line, "edge")
			if err != nil {
				return err
			}
			g = &Graph{numVertices: n, edges: make([][2]int, 0, m)}
			numEdges = m
			return nil
		}
		if !edgeLine.MatchString(line) {
			return fmt.Errorf("invalid dimacs command: %s", line)
		}
		if g == nil {
			return fmt.Errorf("invalid dimacs format: missing header 'p edge <vertices> <edges>'")
		}
		fields := strings.Split(cleanInput.ReplaceAllString(line, " "), " ")
		var e [2]int
		for i, f := range fields[1:] {
			v, _ := strconv.Atoi(f)
			if v < 1 || v > g.numVertices {
				return fmt.Errorf("invalid edge (%s): %d is not a valid vertex", line, v)
			}
			e[i] = v
		}
		g.edges = append(g.edges, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g == nil || len(g.edges) == 0 {
		return nil, fmt.Errorf("invalid format: no edges found")
	}
	if len(g.edges) != numEdges {
		return nil, fmt.Errorf("invalid format: number of edges in header differ from the total number of edges")
	}
	return g, nil
}
