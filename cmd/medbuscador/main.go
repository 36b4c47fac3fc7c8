package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medbuscador/internal"
	"medbuscador/internal/app"
	"medbuscador/internal/catalog"
	"medbuscador/internal/search"
	"medbuscador/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	a, err := app.New()
	must(err)
	defer a.Close()

	switch os.Args[1] {
	case "search":
		runSearch(a, os.Args[2:])
	case "catalog":
		runCatalog(a)
	case "export":
		runExport(a, os.Args[2:])
	case "import":
		runImport(a, os.Args[2:])
	case "users":
		runUsers(a, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: medbuscador <command> [flags]

commands:
  search <query>   query the catalog and live retailer pages
  catalog          show a summary of the merged catalog
  export           write the merged catalog to a file
  import           replace a catalog from an xlsx/csv/pdf file
  users            manage accounts (add <username> <password>)`)
}

func runSearch(a *app.App, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	mode := fs.String("mode", string(internal.ModeBoth), "base, web or both")
	scope := fs.String("scope", string(internal.ScopeBoth), "PRODUCTO, PRINCIPIO ACTIVO or AMBOS")
	must(fs.Parse(args))
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: medbuscador search [flags] <query>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	user := internal.User{Username: "cli", Role: internal.RoleAdmin}
	resp, err := a.Service.Search(ctx, user, search.Request{
		Query: fs.Arg(0),
		Mode:  internal.SearchMode(*mode),
		Scope: internal.SearchScope(*scope),
	})
	must(err)

	for _, rec := range resp.Records {
		fmt.Printf("%-50s %-12s %-20s %s\n",
			truncate(rec.ProductName, 50), rec.Price, rec.SourceName, rec.Link)
	}
	summary := view.Summarize(resp.Records)
	fmt.Printf("\n%d resultados (%d catálogo, %d web) en %dms\n",
		summary.Total, resp.FromBase, resp.FromWeb, resp.ElapsedMs)
	if summary.Cheapest != nil {
		fmt.Printf("más barato: %s %s (%s)\n",
			summary.Cheapest.Price, summary.Cheapest.ProductName, summary.Cheapest.SourceName)
	}
	for _, src := range resp.Sources {
		status := fmt.Sprintf("%d resultados", len(src.Hits))
		if src.Err != nil {
			status = "error: " + src.Err.Error()
		}
		fmt.Printf("  %-20s %-30s %s\n", src.Source, status, src.Elapsed.Round(time.Millisecond))
	}
}

func runCatalog(a *app.App) {
	records := a.Service.Catalog()
	summary := view.Summarize(records)
	fmt.Printf("catálogo: %d filas (%d con precio)\n", summary.Total, summary.Priced)
	for _, name := range view.Pharmacies(records) {
		fmt.Println("  fuente:", name)
	}
	if summary.Cheapest != nil {
		fmt.Printf("más barato: %s %s\n", summary.Cheapest.Price, summary.Cheapest.ProductName)
	}
	if summary.Dearest != nil {
		fmt.Printf("más caro:   %s %s\n", summary.Dearest.Price, summary.Dearest.ProductName)
	}
}

func runExport(a *app.App, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "xlsx", "csv or xlsx")
	out := fs.String("out", "", "output path (default catalogo.<format>)")
	must(fs.Parse(args))

	records := a.Service.Catalog()
	var (
		blob []byte
		err  error
	)
	switch *format {
	case "csv":
		blob, err = view.ExportCSV(records)
	case "xlsx":
		blob, err = view.ExportXLSX(records)
	default:
		fmt.Fprintln(os.Stderr, "format must be csv or xlsx")
		os.Exit(2)
	}
	must(err)

	path := *out
	if path == "" {
		path = "catalogo." + *format
	}
	must(os.WriteFile(path, blob, 0o644))
	fmt.Printf("%d filas escritas en %s\n", len(records), path)
}

func runImport(a *app.App, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	which := fs.String("which", "main", "main or extra")
	file := fs.String("file", "", "path to the file to import")
	must(fs.Parse(args))
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: medbuscador import -which main|extra -file <path>")
		os.Exit(2)
	}

	repo := a.Base
	profile := catalog.ProfileMain
	switch *which {
	case "main":
	case "extra":
		repo = a.Extra
		profile = catalog.ProfileExtra
	default:
		fmt.Fprintln(os.Stderr, "-which must be main or extra")
		os.Exit(2)
	}

	count, err := search.ImportInto(repo, catalog.ReadTable(*file), profile)
	must(err)
	fmt.Printf("%d filas importadas en %s\n", count, repo.Path())
}

func runUsers(a *app.App, args []string) {
	if len(args) < 1 || args[0] != "add" {
		fmt.Fprintln(os.Stderr, "usage: medbuscador users add [flags] <username> <password>")
		os.Exit(2)
	}
	fs := flag.NewFlagSet("users add", flag.ExitOnError)
	role := fs.String("role", internal.RoleConsulta, "admin or consulta")
	must(fs.Parse(args[1:]))
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: medbuscador users add [flags] <username> <password>")
		os.Exit(2)
	}

	user := internal.User{Username: fs.Arg(0), Role: *role}
	must(a.Store.CreateUser(context.Background(), user, fs.Arg(1)))
	fmt.Printf("usuario %s creado (%s)\n", user.Username, user.Role)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
