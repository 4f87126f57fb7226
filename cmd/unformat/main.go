// Command unformat extracts values from text with a format-style template.
//
//	unformat parse 'Our {:d} {:w} are...' 'Our 3 weapons are...'
//	unformat findall '<{tag:w}>' < page.html
//
// Texts given after the template are matched one by one; with none, each
// line of standard input is matched. Results are printed as YAML
// documents or JSON lines.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
