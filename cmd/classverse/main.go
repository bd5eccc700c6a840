package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/config"
	"github.com/classverse/classverse/server"
	"github.com/classverse/classverse/services"
	"github.com/classverse/classverse/store"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// open the database connection, apply schema, and defer closing it
	db, err := store.NewWithMigration(conf.DatabaseURL)
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()

	// setup all services
	auth, err := services.NewAuthenticater(db)
	if err != nil {
		logrus.Fatal(err)
	}

	dir, err := services.NewDirectory(db)
	if err != nil {
		logrus.Fatal(err)
	}

	msg, err := services.NewMessenger(db)
	if err != nil {
		logrus.Fatal(err)
	}

	var policy classverse.MemberPolicy
	if conf.OpenGroups {
		policy = classverse.PolicyAnyParticipant
	}
	member, err := services.NewMembership(db, policy)
	if err != nil {
		logrus.Fatal(err)
	}

	contacts, err := services.NewContacter(db)
	if err != nil {
		logrus.Fatal(err)
	}

	plan, err := services.NewPlanner(db)
	if err != nil {
		logrus.Fatal(err)
	}

	sched, err := services.NewScheduler(db)
	if err != nil {
		logrus.Fatal(err)
	}

	// presence tracking is optional and only enabled when redis is
	// configured
	var pres classverse.Presence
	if conf.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
		})
		pres, err = services.NewPresence(rdb, conf.PresenceTTL)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// if the database is empty, create the bootstrap admin
	if users, err := db.GetUsers(); err != nil {
		logrus.Fatal("Can't query for users on start")
	} else if len(users) == 0 && conf.AdminEmail != "" {
		logrus.Info("creating bootstrap admin")
		hashed, err := bcrypt.GenerateFromPassword([]byte(conf.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logrus.Fatal("Error hashing password")
		}
		if _, err := db.CreateUser(&classverse.User{
			ID:        uuid.New().String(),
			Name:      conf.AdminName,
			Email:     conf.AdminEmail,
			Password:  hashed,
			Role:      classverse.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			logrus.Fatal(err)
		}
	}

	// build the server and inject dependencies
	srv := server.NewServer(auth, dir, msg, member, contacts, plan, sched, pres, []byte(conf.SecretKey), conf.TokenTTL)

	logrus.Infof("listening on %s", conf.Addr)
	if err := http.ListenAndServe(conf.Addr, srv.Serve()); err != nil {
		logrus.Fatal(err)
	}
}
