package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pasarfleet/p-ui/app"
	"github.com/pasarfleet/p-ui/cmd"
	"github.com/pasarfleet/p-ui/config"
)

func runApp() {
	a := app.NewApp()
	err := a.Init()
	if err != nil {
		log.Fatal(err)
	}
	err = a.Start()
	if err != nil {
		log.Fatal(err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP:
			err := a.RestartApp()
			if err != nil {
				log.Fatal(err)
			}
		default:
			a.Stop()
			return
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		runApp()
		return
	}

	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "show version")

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	var reset bool
	var show bool
	var username string
	var password string
	adminCmd.BoolVar(&reset, "reset", false, "reset admin credentials to admin/admin")
	adminCmd.BoolVar(&show, "show", false, "show current admin credentials")
	adminCmd.StringVar(&username, "username", "", "set admin username")
	adminCmd.StringVar(&password, "password", "", "set admin password")

	flag.Parse()
	if showVersion {
		fmt.Println(config.GetVersion())
		return
	}

	switch os.Args[1] {
	case "run":
		err := runCmd.Parse(os.Args[2:])
		if err != nil {
			fmt.Println(err)
			return
		}
		runApp()
	case "admin":
		err := adminCmd.Parse(os.Args[2:])
		if err != nil {
			fmt.Println(err)
			return
		}
		switch {
		case reset:
			cmd.ResetAdmin()
		case show:
			cmd.ShowAdmin()
		default:
			cmd.UpdateAdmin(username, password)
		}
	default:
		fmt.Println("unknown command:", os.Args[1])
		fmt.Println()
		fmt.Println("usage: p-ui [run|admin]")
	}
}
