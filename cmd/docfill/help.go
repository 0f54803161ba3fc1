package main

import (
	"fmt"
	"io"
)

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "generate", "gen":
		printGenerateUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "history":
		printHistoryUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docfill version")
	case "help":
		printUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown help topic %q\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docfill <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill DOCX and HTML templates with context data and deliver PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Fill one template")
	fmt.Fprintln(w, "  batch      Fill the templates listed in a manifest")
	fmt.Fprintln(w, "  history    Show recent generations from the ledger")
	fmt.Fprintln(w, "  doctor     Check Chrome, LibreOffice and directories")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docfill help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only print errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging and diagnostics")
	fmt.Fprintln(w)
}

func printRenderFlags(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --templates-dir <dir> Directory searched for template names")
	fmt.Fprintln(w, "      --renderer <s>        HTML renderer: chrome, basic")
	fmt.Fprintln(w, "      --timeout <d>         PDF rendering timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w, "      --native              Deliver the filled DOCX/HTML, skip PDF")
	fmt.Fprintln(w)
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docfill generate <template> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill a DOCX or HTML template. The template is a path, or a name")
	fmt.Fprintln(w, "looked up in the template directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Context:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -d, --data <file>         Context file (YAML or JSON), repeatable")
	fmt.Fprintln(w, "      --set <key=value>     Context value, repeatable")
	fmt.Fprintln(w, "      --stamp <key[=FMT]>   Generation date, repeatable")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, mmmm, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long, largo")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  docfill generate reporte.docx -d ana.yaml -o out/")
	fmt.Fprintln(w, "  docfill generate anexo_b.html --set nombre=Ana --stamp fecha=largo")
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docfill batch <manifest.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill every job of a manifest in parallel:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  jobs:")
	fmt.Fprintln(w, "    - template: anexo_a.docx")
	fmt.Fprintln(w, "      output: out/anexo_a.pdf")
	fmt.Fprintln(w, "      data: contexts/ana.yaml")
	fmt.Fprintln(w, "      context: {nombre: Ana Torres}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

// printHistoryUsage prints usage for the history command.
func printHistoryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docfill history [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show recent generations recorded in the ledger (ledger.path).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -n, --limit <n>           Number of entries (default 20)")
	fmt.Fprintln(w, "      --json                JSON output")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docfill doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser, LibreOffice, template and scratch directories.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                JSON output")
	fmt.Fprintln(w)
	printCommonFlags(w)
}
