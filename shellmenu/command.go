package shellmenu

import (
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/digest_tool/digest"
)

// DefaultTemplate renders the command line bound to each menu entry.
// Placeholders use single braces:
//
//	{exe}         absolute path of the executable
//	{target}      the shell's placeholder for the clicked file
//	{digest_flag} " -d <token>", or empty for the default algorithm
//	{algorithm}   the algorithm token
//
// Entries pass --wait so the console window stays open until Enter.
const DefaultTemplate = `"{exe}" -i "{target}"{digest_flag} --wait`

// DefaultTarget is the Explorer placeholder for the selected item.
const DefaultTarget = "%V"

// CommandLine expands tpl for alg. Unknown placeholders are kept as-is.
func CommandLine(
	tpl string,
	exe string,
	target string,
	alg digest.Algorithm,
) string {
	flag := ""
	if alg != digest.Default {
		flag = " -d " + alg.String()
	}

	return fasttemplate.ExecuteStringStd(
		tpl, "{", "}", map[string]interface{}{
			"exe":         exe,
			"target":      target,
			"digest_flag": flag,
			"algorithm":   alg.String(),
		},
	)
}
