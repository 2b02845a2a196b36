package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/go-playground/locales/en"

	echoapi "github.com/elimuhq/elimu/apps/api/echo"
	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/content"
	"github.com/elimuhq/elimu/core/course"
	"github.com/elimuhq/elimu/core/identity"
	chatbotsvc "github.com/elimuhq/elimu/services/chatbot"
	emailsvc "github.com/elimuhq/elimu/services/email"
	logsvc "github.com/elimuhq/elimu/services/logger"
	"github.com/elimuhq/elimu/storage/mongostore"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		std.Fatalf("main: error: %+v", err)
	}
}

func run(std *log.Logger) error {
	conf := core.NewConfig()

	lg := logsvc.NewRollbarLogger(std, conf)
	lg.Enable(!conf.Debug)
	defer lg.Info("main: api stopped")

	expvar.NewString("build").Set(conf.Build)
	lg.Info("main: started: application initializing: version " + conf.Build)

	// validation
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())
	validate := validator.New()
	core.InitValidators(validate, translator)
	identity.InitValidators(validate, translator)

	// database
	db, err := mongostore.Open(conf)
	if err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	defer func() {
		lg.Info("main: database stopping")
		_ = db.Client().Disconnect(context.Background())
	}()
	if err = mongostore.EnsureIndexes(context.Background(), db); err != nil {
		return errors.Wrap(err, "ensuring database indexes")
	}

	studentRepo := mongostore.NewStudentRepository(db)
	adminRepo := mongostore.NewAdminRepository(db)
	courseRepo := mongostore.NewCourseRepository(db)
	sessionRepo := mongostore.NewSessionRepository(db)
	resourceRepo := mongostore.NewResourceRepository(db)
	galleryRepo := mongostore.NewGalleryRepository(db)

	// services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, lg)
	}
	identitySvc := identity.NewService(studentRepo, adminRepo, mailSvc, conf)
	courseSvc := course.NewService(courseRepo, sessionRepo, studentRepo, adminRepo)
	contentSvc := content.NewService(resourceRepo, galleryRepo, courseRepo, studentRepo)
	chatSvc := chatbotsvc.NewHTTPService(conf, lg)

	// debug server; exposes /debug/pprof and /debug/vars
	go func() {
		lg.Info("main: debug server listening on " + conf.Server.DebugAddr)
		err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux)
		lg.Error("main: debug server closed", err)
	}()

	// API server
	server := echoapi.NewServer(conf.Server.Addr, echoapi.Deps{
		Conf:        conf,
		Logger:      lg,
		IdentitySvc: identitySvc,
		CourseSvc:   courseSvc,
		ContentSvc:  contentSvc,
		ChatSvc:     chatSvc,
		Validate:    validate,
		Translator:  translator,
	})
	go func() {
		lg.Info("main: api server listening on " + conf.Server.Addr)
		server.Start()
	}()

	// shutdown
	select {
	case err := <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		lg.Info("main: start shutdown: " + sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			lg.Error("main: graceful shutdown failed", err)
			if err = server.Close(); err != nil {
				return errors.Wrap(err, "closing server")
			}
		}
	}
	return nil
}
