package book

import "strings"

const parentsSeparator = " / "

// Located is an entry together with the path of titles leading to it.
type Located struct {
	Entry   *TocEntry
	Parents string
	Depth   int
}

// Collect flattens the tree below root in document order. The root itself is
// not part of the result; its children have depth 1.
func Collect(root *TocEntry) []Located {
	located := []Located{}
	var recurse func(entry *TocEntry, parents []string, depth int)
	recurse = func(entry *TocEntry, parents []string, depth int) {
		for _, child := range entry.Children {
			path := append(append([]string{}, parents...), child.Title)
			located = append(located, Located{
				Entry:   child,
				Parents: strings.Join(path, parentsSeparator),
				Depth:   depth,
			})
			recurse(child, path, depth+1)
		}
	}
	if root != nil {
		recurse(root, nil, 1)
	}
	return located
}

func CollectByDepth(root *TocEntry) [][]*TocEntry {
	if root == nil {
		return nil
	}
	byDepth := [][]*TocEntry{{root}}
	for _, located := range Collect(root) {
		for len(byDepth) <= located.Depth {
			byDepth = append(byDepth, nil)
		}
		byDepth[located.Depth] = append(byDepth[located.Depth], located.Entry)
	}
	return byDepth
}

// Find returns the first entry below root whose rendered page is htmlURL.
func Find(root *TocEntry, htmlURL string) (Located, bool) {
	for _, located := range Collect(root) {
		if located.Entry.HTMLURL != nil && *located.Entry.HTMLURL == htmlURL {
			return located, true
		}
	}
	return Located{}, false
}
