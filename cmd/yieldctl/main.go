// yieldctl は日次クロージング（implied yield の確定と公式カーブの公表）を行うバッチ用CLIです。
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd(openEngine).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
