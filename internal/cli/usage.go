package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/anneauger/coco/internal/getopt"
)

// localOptions are handled by cocopp itself and described in usageText.
var localOptions = map[string]bool{
	"-h": true, "--help": true,
	"-v": true, "--verbose": true,
	"-o": true, "--output-dir": true,
	"--omit-single":     true,
	"--rld-single-fcts": true,
	"--input-path":      true,
	"--in-a-hurry":      true,
	"--svg":             true,
}

const usageText = `Usage: cocopp [options] DATAFOLDER [DATAFOLDER...]

Post-processes COCO benchmark data. Each DATAFOLDER holds the data of ONE
algorithm. Depending on the number of folders, cocopp

  * builds the single-algorithm report for each folder; each folder is
    used as output sub-folder of the main output folder,
  * then builds the two-algorithm comparison (2 folders) or the
    many-algorithm comparison (more than 2 folders) for all folders at once.

The figures and tables written to the output folder (default ppdata) are
used by the LaTeX templates; the commands shared by the templates are
collected in bbob_pproc_commands.tex in the output folder.

Options:

    -h, --help
        displays this message.

    -v, --verbose
        verbose mode, prints out operations.

    -o, --output-dir=OUTPUTDIR
        changes the default output directory (ppdata) to OUTPUTDIR.

    --omit-single
        omit the single-algorithm reports if more than one data folder is
        provided.

    --rld-single-fcts
        generate also runlength distribution figures for each single
        function. Works only if more than two algorithms are given.

    --input-path=INPUTPATH
        all folder arguments are prepended with the given value, which
        must be a valid path.

    --in-a-hurry=N
        takes values between 0 (default) and 1000; fast processing that
        does not write eps files and uses a small number of bootstrap
        samples.

    --svg
        generate also the svg figures which are used in html files.
`

// printUsage writes the usage text, followed by the options forwarded
// to the report generators as the grammar defines them.
func printUsage(w io.Writer, grammar *getopt.Grammar) {
	fmt.Fprintf(w, "cocopp %s (commit: %s, built: %s)\n\n", Version, Commit, Date)
	fmt.Fprint(w, usageText)

	var generic []string
	for _, opt := range append(grammar.ShortOptions(), grammar.LongOptions()...) {
		if localOptions[opt] {
			continue
		}
		if takesValue, _ := grammar.TakesValue(opt); takesValue {
			opt += "=VALUE"
		}
		generic = append(generic, opt)
	}
	if len(generic) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other options, passed on to the report generators:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s\n", strings.Join(generic, " "))
}
