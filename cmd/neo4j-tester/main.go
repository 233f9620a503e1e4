package main

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/storage"
	"github.com/bcap/teachbook-harvester/storage/neo4j"
)

func main() {
	log.Level = log.DebugLevel
	ctx := context.Background()
	s := neo4j.New(neo4j.DefaultURL)

	root := book.NewEntry(
		"Manual",
		book.Link("http://test1/intro.html"),
		book.Link("http://testcode1/-/blob/v1/book/intro.md"),
	)
	part := book.Caption("Part 1")
	part.Append(
		book.NewEntry("Chapter 1", book.Link("http://test1/chapter1.html"), book.Link("http://testcode1/-/blob/v1/book/chapter1.md")),
		book.NewEntry("Elsewhere", book.Link("http://elsewhere"), nil),
	)
	root.Append(part)

	b1 := book.Book{
		Query: book.Query{
			HTMLURL: "http://test1/intro.html",
			CodeURL: "http://testcode1",
			Release: "v1",
			TocPath: "book/_toc.yml",
		},
		Title:  "test title 1",
		Author: "test author 1",
		Logo:   "http://testcode1/raw/v1/book/logo.png",
		Toc:    root,
	}
	b2 := book.Book{
		Query: book.Query{
			HTMLURL: "http://test2/intro.html",
			CodeURL: "http://testcode2",
			Release: "main",
			TocPath: "book/_toc.yml",
		},
		Title: "test title 2",
		Toc:   book.NewEntry("test title 2", book.Link("http://test2/intro.html"), nil),
	}

	fmt.Println(spew.Sdump(s.Initialize(ctx)))
	fmt.Println(spew.Sdump(s.SetBookState(ctx, b1.HTMLURL, storage.NotHarvested, storage.BeingHarvested)))
	state, err := s.GetBookState(ctx, b1.HTMLURL)
	fmt.Println(spew.Sdump(state, err))
	fmt.Println(spew.Sdump(s.SetBookState(ctx, b1.HTMLURL, state, storage.Harvested)))
	fmt.Println(spew.Sdump(s.SetBook(ctx, b1.HTMLURL, &b1)))
	fmt.Println(spew.Sdump(s.SetBook(ctx, b2.HTMLURL, &b2)))
	fmt.Println(spew.Sdump(s.GetBookState(ctx, b1.HTMLURL)))
	fmt.Println(spew.Sdump(s.GetBook(ctx, b1.HTMLURL)))
	fmt.Println(spew.Sdump(s.ListBooks(ctx)))
	fmt.Println(spew.Sdump(s.Shutdown(ctx)))
}
