package main

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/go-playground/locales/en"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/identity"
	emailsvc "github.com/elimuhq/elimu/services/email"
	logsvc "github.com/elimuhq/elimu/services/logger"
	"github.com/elimuhq/elimu/storage/mongostore"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		if errors.Cause(err) == errHelp {
			os.Exit(2)
		}
		std.Fatalf("main: error: %+v", err)
	}
}

func run(std *log.Logger) error {
	conf := core.NewConfig()

	lg := logsvc.NewRollbarLogger(std, conf)
	lg.Enable(!conf.Debug)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)

	db, err := mongostore.Open(conf)
	if err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	defer db.Client().Disconnect(context.Background())

	studentRepo := mongostore.NewStudentRepository(db)
	adminRepo := mongostore.NewAdminRepository(db)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, lg)
	}
	identitySvc := identity.NewService(studentRepo, adminRepo, mailSvc, conf)

	return runCommand(os.Args[1:], commandDeps{
		identitySvc: identitySvc,
		adminRepo:   adminRepo,
		validate:    validate,
	})
}
