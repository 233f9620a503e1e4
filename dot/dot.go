package dot

import (
	"fmt"
	"io"
	"strings"

	"github.com/bcap/teachbook-harvester/book"
)

// PrintBookGraph writes the tables of contents of books as a single dot
// digraph, one cluster per book. Entries that can be included in other books
// are filled.
func PrintBookGraph(books []*book.Book, writer io.Writer) {
	fmt.Fprint(writer, "digraph G {\n")
	fmt.Fprint(writer, "\n// styling\n")
	fmt.Fprint(writer, "rankdir=LR\n")
	fmt.Fprint(writer, "splines=ortho\n")
	fmt.Fprint(writer, "node [shape=box]\n")

	for bookIdx, b := range books {
		if b == nil || b.Toc == nil {
			continue
		}
		printBook(writer, bookIdx, b)
	}

	fmt.Fprint(writer, "\n}\n")
}

func printBook(writer io.Writer, bookIdx int, b *book.Book) {
	ids := map[*book.TocEntry]string{}
	byDepth := book.CollectByDepth(b.Toc)
	for depth, entries := range byDepth {
		for idx, entry := range entries {
			ids[entry] = fmt.Sprintf("b%d_%d_%d", bookIdx, depth, idx)
		}
	}

	fmt.Fprintf(writer, "\nsubgraph cluster_%d {\n", bookIdx)
	fmt.Fprintf(writer, "label=%q\n", b.Title)
	fmt.Fprintf(writer, "URL=%q\n", b.HTMLURL)

	fmt.Fprint(writer, "\n// node declarations\n")
	for depth, entries := range byDepth {
		for _, entry := range entries {
			attrs := []string{
				"nojustify=false",
				fmt.Sprintf("label=\"%s\\l%s\\l\"", escape(entry.Title), depthLabel(depth)),
			}
			if entry.HTMLURL != nil {
				attrs = append(attrs, fmt.Sprintf("URL=%q", *entry.HTMLURL))
			}
			if entry.Selectable() {
				attrs = append(attrs, "style=filled", "fillcolor=lightblue")
			}
			fmt.Fprintf(writer, "%s [%s]\n", ids[entry], strings.Join(attrs, " "))
		}
	}

	fmt.Fprint(writer, "\n// rank adjustments\n")
	for depth, entries := range byDepth {
		rank := "same"
		if depth == 0 {
			rank = "source"
		}
		nodes := make([]string, len(entries))
		for idx, entry := range entries {
			nodes[idx] = ids[entry]
		}
		fmt.Fprintf(writer, "{rank=%s; %s}\n", rank, strings.Join(nodes, "; "))
	}

	fmt.Fprint(writer, "\n// edges\n")
	var genEdges func(entry *book.TocEntry)
	genEdges = func(entry *book.TocEntry) {
		for idx, child := range entry.Children {
			fmt.Fprintf(writer, "%s -> %s [label=%q]\n", ids[entry], ids[child], fmt.Sprintf("idx:%d", idx))
		}
		for _, child := range entry.Children {
			genEdges(child)
		}
	}
	genEdges(b.Toc)

	fmt.Fprint(writer, "}\n")
}

func depthLabel(depth int) string {
	if depth == 0 {
		return "root"
	}
	return fmt.Sprintf("depth:%d", depth)
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
