package cmd

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/OhanaFS/mincrypt"
)

var (
	VersionCmd = flag.NewFlagSet("version", flag.ExitOnError)
	verCode    = VersionCmd.Bool("code", false, "print the packed version code only")
)

func RunVersionCmd() int {
	v := mincrypt.Version()
	if *verCode {
		fmt.Println(v.Code())
		return mincrypt.CodeOK
	}
	fmt.Printf("mincrypt %s (%s %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return mincrypt.CodeOK
}
