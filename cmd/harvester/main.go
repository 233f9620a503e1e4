package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/catalog"
	"github.com/bcap/teachbook-harvester/config"
	"github.com/bcap/teachbook-harvester/dot"
	"github.com/bcap/teachbook-harvester/harvest"
	myhttp "github.com/bcap/teachbook-harvester/http"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/search"
	"github.com/bcap/teachbook-harvester/selection"
	"github.com/bcap/teachbook-harvester/storage"
	"github.com/bcap/teachbook-harvester/storage/jsonfile"
	"github.com/bcap/teachbook-harvester/storage/neo4j"
	"github.com/bcap/teachbook-harvester/toc"
)

// global flags
var configFile string
var verbose bool
var maxRequestRetries int
var minRequestRetryWait time.Duration
var maxRequestRetryWait time.Duration
var requestTimeout time.Duration
var maxParallelism int
var userAgent string
var maxSectionDepth int
var neo4JURL string
var neo4JUser string
var neo4JPassword string

// harvest
var catalogPath string
var catalogURL string
var outputPath string
var resume bool
var useNeo4J bool
var printDot bool

// book
var query book.Query

// search
var chaptersPath string
var searchLimit int

// instructions
var selectedPages []string
var mailInstructions bool
var renderHTML bool

// localize
var localizeInput string
var localizeOutput string
var externalPath string
var printClone bool

// share
var shareBaseURL string

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := parser()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func parser() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "harvests the tables of contents of TeachBooks and helps reusing their chapters",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Level = log.InfoLevel
			if verbose {
				log.Level = log.DebugLevel
			}
		},
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file to use instead of looking up harvester.yaml")
	flags.BoolVarP(&verbose, "verbose", "v", false, "be more verbose by logging in debug mode")
	flags.IntVar(&maxRequestRetries, "max-retries", 0, "controls how many times a request is retried")
	flags.DurationVar(&minRequestRetryWait, "min-retry-wait", 1*time.Second, "minimum time to wait in between retries")
	flags.DurationVar(&maxRequestRetryWait, "max-retry-wait", 15*time.Second, "maximum time to wait in between retries")
	flags.DurationVar(&requestTimeout, "timeout", 30*time.Second, "timeout of a single request")
	flags.IntVarP(&maxParallelism, "parallelism", "p", 10, "controls how many requests are allowed in parallel")
	flags.StringVar(&userAgent, "user-agent", myhttp.DefaultUserAgent, "user agent sent with every request")
	flags.IntVar(&maxSectionDepth, "max-section-depth", harvest.DefaultMaxSectionDepth, "how many levels of sections below a chapter are kept")
	flags.StringVar(&neo4JURL, "neo4j-url", neo4j.DefaultURL, "neo4j database address")
	flags.StringVar(&neo4JUser, "neo4j-user", "", "user when connecting to the neo4j database")
	flags.StringVar(&neo4JPassword, "neo4j-password", "", "password when connecting to the neo4j database")

	cmd.AddCommand(
		harvestCommand(),
		bookCommand(),
		searchCommand(),
		instructionsCommand(),
		localizeCommand(),
		shareCommand(),
	)
	return cmd
}

func harvestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "harvest every book of a catalog into a chapters file",
		Args:  cobra.NoArgs,
		RunE:  runHarvest,
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", catalog.DefaultPath, "YAML or JSON list of books to harvest")
	cmd.Flags().StringVar(&catalogURL, "catalog-url", "", "read the books to harvest from the query string of this URL instead of the catalog file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", jsonfile.DefaultPath, "where to write the harvested books")
	cmd.Flags().BoolVar(&resume, "resume", false, "keep the books of an existing output file and only harvest the missing ones")
	cmd.Flags().BoolVar(&useNeo4J, "neo4j", false, "use neo4j as storage")
	cmd.Flags().BoolVar(&printDot, "dot", false, "print the harvested books as a dot file (stdout)")
	return cmd
}

func bookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "harvest a single book and print it as JSON",
		Args:  cobra.NoArgs,
		RunE:  runBook,
	}
	cmd.Flags().StringVar(&query.HTMLURL, "html-url", "", "address of the rendered book")
	cmd.Flags().StringVar(&query.CodeURL, "code-url", "", "address of the book repository")
	cmd.Flags().StringVar(&query.Release, "release", "", "branch or tag the book was built from")
	cmd.Flags().StringVar(&query.TocPath, "toc-path", "book/_toc.yml", "path of _toc.yml in the repository")
	cmd.Flags().BoolVar(&printDot, "dot", false, "print the book as a dot file instead of JSON")
	cmd.MarkFlagRequired("html-url")
	cmd.MarkFlagRequired("code-url")
	cmd.MarkFlagRequired("release")
	return cmd
}

func searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "search the chapters of harvested books",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().StringVar(&chaptersPath, "chapters", jsonfile.DefaultPath, "harvested books")
	cmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "maximum number of hits")
	return cmd
}

func instructionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructions",
		Short: "print the instructions to include chapters of harvested books in another book",
		Args:  cobra.NoArgs,
		RunE:  runInstructions,
	}
	cmd.Flags().StringVar(&chaptersPath, "chapters", jsonfile.DefaultPath, "harvested books")
	cmd.Flags().StringSliceVarP(&selectedPages, "select", "s", nil, "rendered page of a chapter to include, can be repeated")
	cmd.Flags().BoolVar(&mailInstructions, "mail", false, "print instructions to ask for the chapters by mail")
	cmd.Flags().BoolVar(&renderHTML, "html", false, "render the instructions as HTML")
	cmd.MarkFlagRequired("select")
	return cmd
}

func localizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "localize",
		Short: "rewrite the external chapters of a _toc.yml into local files",
		Args:  cobra.NoArgs,
		RunE:  runLocalize,
	}
	cmd.Flags().StringVarP(&localizeInput, "input", "i", "book/_toc.yml", "TOC to localize")
	cmd.Flags().StringVarP(&localizeOutput, "output", "o", "book/_toc.local.yml", "where to write the localized TOC")
	cmd.Flags().StringVarP(&externalPath, "external-path", "e", toc.DefaultExternalPath, "directory external repositories are cloned into")
	cmd.Flags().BoolVar(&printClone, "print-clone", false, "print the git commands fetching the external repositories")
	return cmd
}

func shareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "print a URL carrying the books of a catalog",
		Args:  cobra.NoArgs,
		RunE:  runShare,
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", catalog.DefaultPath, "YAML or JSON list of books")
	cmd.Flags().StringVar(&shareBaseURL, "base-url", "", "address the catalog is appended to")
	cmd.MarkFlagRequired("base-url")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.New(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.Decode(v)
}

func newHarvester(cfg *config.Config, options ...harvest.HarvesterOption) *harvest.Harvester {
	options = append([]harvest.HarvesterOption{
		harvest.WithMaxSectionDepth(cfg.Harvest.MaxSectionDepth),
		harvest.WithMaxParallelism(cfg.HTTP.Parallelism),
		harvest.WithRequestMaxRetries(cfg.HTTP.MaxRetries),
		harvest.WithRequestMinRetryWait(cfg.HTTP.MinRetryWait),
		harvest.WithRequestMaxRetryWait(cfg.HTTP.MaxRetryWait),
		harvest.WithRequestTimeout(cfg.HTTP.Timeout),
		harvest.WithUserAgent(cfg.HTTP.UserAgent),
	}, options...)
	return harvest.NewHarvester(options...)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var queries []book.Query
	if catalogURL != "" {
		queries, err = catalog.FromURL(catalogURL, catalog.DefaultParam)
	} else {
		queries, err = catalog.Load(catalogPath)
	}
	if err != nil {
		return err
	}

	output := jsonfile.New(outputPath)
	output.Resume = resume
	var s storage.Storage = output
	if useNeo4J {
		db := neo4j.New(cfg.Storage.Neo4j.URL)
		db.User = cfg.Storage.Neo4j.User
		db.Password = cfg.Storage.Neo4j.Password
		s = db
	}
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	harvester := newHarvester(cfg, harvest.WithStorage(s))
	result, err := harvester.HarvestAll(ctx, queries)
	if err != nil {
		release(ctx, s, true)
		return err
	}
	for _, failure := range result.Failures {
		log.Warnf("skipped %v", failure)
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		release(ctx, s, true)
		return err
	}
	if useNeo4J {
		if err := jsonfile.Write(outputPath, books); err != nil {
			release(ctx, s, true)
			return err
		}
		log.Infof("wrote %d books to %s", len(books), outputPath)
	}
	if err := release(ctx, s, false); err != nil {
		return err
	}

	if printDot {
		log.Infof("printing results as a dot file")
		dot.PrintBookGraph(books, os.Stdout)
	}
	return nil
}

// release shuts s down. A failed run only releases storages that can abort,
// so a partial harvest never replaces a previous output file.
func release(ctx context.Context, s storage.Storage, failed bool) error {
	if failed {
		if aborter, ok := s.(interface{ Abort(context.Context) error }); ok {
			return aborter.Abort(ctx)
		}
	}
	return s.Shutdown(ctx)
}

func runBook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	harvester := newHarvester(cfg)
	b, err := harvester.HarvestBook(cmd.Context(), query)
	if err != nil {
		return err
	}
	if printDot {
		dot.PrintBookGraph([]*book.Book{b}, os.Stdout)
		return nil
	}
	return printJSON(os.Stdout, b)
}

func runSearch(cmd *cobra.Command, args []string) error {
	books, err := jsonfile.Read(chaptersPath)
	if err != nil {
		return err
	}
	index, err := search.New(books)
	if err != nil {
		return err
	}
	defer index.Close()

	hits, err := index.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		log.Infof("no chapter matches %q", strings.Join(args, " "))
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%.3f  %s: %s\n", hit.Score, hit.Book, hit.Parents)
		fmt.Printf("       page:     %s\n", hit.HTMLURL)
		if hit.ExternalURL != "" {
			fmt.Printf("       external: %s\n", hit.ExternalURL)
		}
	}
	return nil
}

func runInstructions(cmd *cobra.Command, args []string) error {
	books, err := jsonfile.Read(chaptersPath)
	if err != nil {
		return err
	}
	sel := selection.New()
	if err := sel.SelectPages(books, selectedPages...); err != nil {
		return err
	}

	var md string
	if mailInstructions {
		md, err = sel.Mail()
	} else {
		md, err = sel.DIY()
	}
	if err != nil {
		return err
	}
	if renderHTML {
		fmt.Print(selection.HTML(md))
		return nil
	}
	fmt.Print(md)
	return nil
}

func runLocalize(cmd *cobra.Command, args []string) error {
	refs, err := toc.LocalizeFile(localizeInput, localizeOutput, externalPath)
	if err != nil {
		return err
	}
	log.Infof("wrote %s with %d external chapters", localizeOutput, len(refs))
	for _, ref := range refs {
		log.Debugf("%s needs %s at %s in %s", ref.FilePath, ref.RepoURL, ref.Revision, ref.Dir)
		if printClone {
			fmt.Println(strings.Join(ref.CloneCommand(), " "))
		}
	}
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	queries, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("the catalog has no books to share")
	}
	url, err := catalog.ToURL(shareBaseURL, catalog.DefaultParam, queries)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
