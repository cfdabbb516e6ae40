package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	avatarsvc "github.com/trezcool/darasa/services/avatar"
	emailsvc "github.com/trezcool/darasa/services/email"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	defer os.Exit(0)

	rootDir, err := os.Getwd()
	errAndDie(err)
	conf := core.NewConfig(rootDir)
	errAndDie(conf.Validate())

	// set up registry
	db, err := inmemdb.Open()
	errAndDie(err)

	// set up services
	store := inmemdb.NewBlobStore(db)
	usrSvc := user.NewService(
		inmemdb.NewUserRepository(db),
		emailsvc.NewConsoleServiceMock(conf),
		avatarsvc.NewIdenticonGenerator(store, conf),
	)

	// start CLI
	cli := commandLine{usrSvc: usrSvc}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
