package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/clarktrimble/sabot"

	"sift"
	"sift/compile"
	"sift/store/duck"
)

// siftq loads a view config and an NDJSON file, compiles the view's filter
// to SQL, and prints the clause plus matching records.

func main() {

	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <view.yaml> <data.ndjson>\n", os.Args[0])
		os.Exit(1)
	}

	ctx := context.Background()
	lgr := &sabot.Sabot{Writer: os.Stderr, MaxLen: 999}

	vw, err := sift.LoadView(os.Args[1])
	if err != nil {
		fatal(err)
	}

	st := vw.Config().New(ctx, lgr)

	pred, ok := vw.Compiler(&compile.SQL{}).Compile(st.Snapshot())
	if !ok {
		fmt.Println("filter compiles to no predicate; matching everything")
	} else {
		cls := pred.(compile.Clause)
		fmt.Printf("where: %s\nargs:  %v\n", cls.Text, cls.Args)
	}

	dk, err := duck.New(lgr, vw.Schema, vw.Columns)
	if err != nil {
		fatal(err)
	}
	defer dk.Close()

	err = dk.Load(os.Args[2])
	if err != nil {
		fatal(err)
	}

	err = dk.SetView(st.Snapshot())
	if err != nil {
		fatal(err)
	}

	_, count, err := dk.GetView()
	if err != nil {
		fatal(err)
	}
	fmt.Printf("count: %d\n", count)

	lines, err := dk.GetPage(0, 10)
	if err != nil {
		fatal(err)
	}
	for _, line := range lines {
		vals := make([]string, 0, len(line.Values))
		for _, val := range line.Values {
			vals = append(vals, val.String())
		}
		fmt.Println(vals)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
	os.Exit(1)
}
