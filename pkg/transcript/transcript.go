// Package transcript parses transcripts of REPL sessions, used as tests.
//
// A transcript consists of code entered after a prompt, each followed by the
// resulting output:
//
//	~> (+ 1 2)
//	3
//	~> (do (write-byte 65 (value *stoutput*))
//	       ok)
//	Aok
//
// A line starting with a prompt (as defined by [PromptPattern]) starts code;
// code extends to further lines that are indented to align with the prompt.
// The other lines are output.
//
// Headings "# h1 #", "## h2 ##" and "### h3 ###" split a transcript into
// sessions and are used to name them. Leading and trailing empty lines of a
// session are stripped.
//
// A line starting with "// " or consisting of 2 or more "/"s and nothing else
// is a comment. A line starting with "//" but is not a comment is a
// directive. Directives can only appear at the beginning of a session, and
// propagate to the sessions under it.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

// Ext is the file extension of transcript files.
const Ext = ".klts"

// Node is a transcript file, or a section within one started by a heading.
type Node struct {
	Name         string
	Directives   []string
	Interactions []Interaction
	Children     []*Node
}

// Session is a Node flattened: its name is the path of headings, and its
// directives include those of its ancestors.
type Session struct {
	Name         string
	Directives   []string
	Interactions []Interaction
}

// Sessions flattens nodes into sessions, skipping nodes without
// interactions.
func Sessions(nodes []*Node) []Session {
	var sessions []Session
	var walk func(n *Node, prefix string, directives []string)
	walk = func(n *Node, prefix string, directives []string) {
		name := prefix + n.Name
		directives = append(directives[:len(directives):len(directives)], n.Directives...)
		if len(n.Interactions) > 0 {
			sessions = append(sessions, Session{name, directives, n.Interactions})
		}
		for _, child := range n.Children {
			walk(child, name+"/", directives)
		}
	}
	for _, n := range nodes {
		walk(n, "", nil)
	}
	return sessions
}

// ParseFromFS scans fsys recursively for transcript files, and parses them.
func ParseFromFS(fsys fs.FS) ([]*Node, error) {
	var nodes []*Node
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != Ext {
			return nil
		}
		file, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		lines, err := readAllLines(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		node, err := parseNode(path, fileLines{path, lines, 1})
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	})
	return nodes, err
}

// Parse parses a single transcript.
func Parse(name string, r io.Reader) (*Node, error) {
	lines, err := readAllLines(r)
	if err != nil {
		return nil, err
	}
	return parseNode(name, fileLines{name, lines, 1})
}

func readAllLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// Represents a range of lines from a file.
type fileLines struct {
	filename    string
	lines       []string
	startLineno int // line number of lines[0]
}

func (fl *fileLines) describeLine(i int) string {
	return fmt.Sprintf("%s:%d", fl.filename, i+fl.startLineno)
}

func (fl *fileLines) slice(i, j int) fileLines {
	return fileLines{fl.filename, fl.lines[i:j], fl.startLineno + i}
}

func parseNode(name string, fl fileLines) (*Node, error) {
	// Path from root to current node; nodeStack[0] is the root, nodeStack[1]
	// is the currently active h1, and so on.
	nodeStack := []*Node{{Name: name}}

	for i := 0; i < len(fl.lines); {
		if title, level, ok := parseHeading(fl.lines[i]); ok {
			if level > len(nodeStack) {
				return nil, fmt.Errorf("%s: h%d before h%d", fl.describeLine(i), level, level-1)
			}
			i++
			node := &Node{Name: title}
			parent := nodeStack[level-1]
			parent.Children = append(parent.Children, node)
			nodeStack = append(nodeStack[:level], node)
		}
		var j int
		for j = i; j < len(fl.lines); j++ {
			if _, _, isHeading := parseHeading(fl.lines[j]); isHeading {
				break
			}
		}
		err := parseSession(nodeStack[len(nodeStack)-1], fl.slice(i, j))
		if err != nil {
			return nil, err
		}
		i = j
	}
	return nodeStack[0], nil
}

func parseHeading(line string) (title string, level int, ok bool) {
	for level := 1; level <= 3; level++ {
		marks := strings.Repeat("#", level)
		if strings.HasPrefix(line, marks+" ") && strings.HasSuffix(line, " "+marks) &&
			len(line) > 2*level+2 {
			return line[level+1 : len(line)-level-1], level, true
		}
	}
	return "", 0, false
}

// Interaction is a single REPL interaction: code entered after a prompt,
// followed by the output. Prompt is never empty.
type Interaction struct {
	Prompt string
	Code   string
	Output string
}

// PromptAndCode returns prompt and code concatenated, with spaces prepended to
// continuation lines in Code to align with the first line.
func (i Interaction) PromptAndCode() string {
	lines := strings.Split(i.Code, "\n")
	var sb strings.Builder
	sb.WriteString(i.Prompt + lines[0])
	continuation := strings.Repeat(" ", len(i.Prompt))
	for _, line := range lines[1:] {
		sb.WriteString("\n" + continuation + line)
	}
	return sb.String()
}

// PromptPattern defines how to match prompts, used to determine which lines
// start the code part of an interaction.
var PromptPattern = regexp.MustCompile(`^[~/][^ ]*> `)

var (
	errFirstLineDoesntHavePrompt            = errors.New("first non-comment line of a session doesn't have prompt")
	errDirectiveOnlyAllowedAtStartOfSession = errors.New("directive only allowed at start of a session")
)

func parseSession(n *Node, fl fileLines) error {
	lines := fl.lines
	var directives []string
	start := 0
	for ; start < len(lines); start++ {
		if lines[start] == "" || isComment(lines[start]) {
			continue
		} else if directive, ok := parseDirective(lines[start]); ok {
			directives = append(directives, directive)
		} else {
			break
		}
	}
	if start < len(lines) && !PromptPattern.MatchString(lines[start]) {
		return fmt.Errorf("%s: %w", fl.describeLine(start), errFirstLineDoesntHavePrompt)
	}
	for len(lines) > 0 && (lines[len(lines)-1] == "" || isComment(lines[len(lines)-1])) {
		lines = lines[:len(lines)-1]
	}
	var interactions []Interaction
	for i := start; i < len(lines); {
		prompt := PromptPattern.FindString(lines[i])
		code := []string{lines[i][len(prompt):]}
		i++
		continuation := strings.Repeat(" ", len(prompt))
		for i < len(lines) && strings.HasPrefix(lines[i], continuation) {
			code = append(code, lines[i][len(continuation):])
			i++
		}
		var output []string
		for i < len(lines) && !PromptPattern.MatchString(lines[i]) {
			if _, ok := parseDirective(lines[i]); ok {
				return fmt.Errorf("%s: %w",
					fl.describeLine(i), errDirectiveOnlyAllowedAtStartOfSession)
			} else if !isComment(lines[i]) {
				output = append(output, lines[i])
			}
			i++
		}
		interactions = append(interactions, Interaction{
			prompt, strings.Join(code, "\n"), joinLines(output)})
	}
	n.Directives = directives
	n.Interactions = interactions
	return nil
}

var slashOnlyCommentPattern = regexp.MustCompile(`^///*$`)

func isComment(line string) bool {
	return strings.HasPrefix(line, "// ") || slashOnlyCommentPattern.MatchString(line)
}

func parseDirective(line string) (string, bool) {
	if strings.HasPrefix(line, "//") && !isComment(line) {
		return line[2:], true
	}
	return "", false
}

// joinLines joins lines, each followed by a newline.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
