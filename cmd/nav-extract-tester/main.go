package main

import (
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/davecgh/go-spew/spew"

	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/nav"
)

// Dumps the navigation index of a saved book page, eg:
//
//	curl -s https://teachbooks.io/manual/intro.html > intro.html
//	nav-extract-tester intro.html
func main() {
	log.Level = log.DebugLevel

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: nav-extract-tester <page.html>")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		panic(err.Error())
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		panic(err.Error())
	}

	index, err := nav.ExtractDocument(os.Args[1], doc)
	if err != nil {
		panic(err.Error())
	}
	fmt.Println(spew.Sdump(index))

	fmt.Println(doc.Find("title").Text())
	fmt.Println()
}
