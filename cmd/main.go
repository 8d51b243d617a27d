package main

import (
	"log"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/cmd/server"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/config"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/storage"
)

var (
	srvAddr                  = config.Env.ServerAddr
	postgresConnStr          = config.Env.PostgresConnStr
	redisAddr                = config.Env.RedisAddr
	redisPassword            = config.Env.RedisPassword
	accessTokenSecret        = config.Env.AccessTokenSecret
	refreshTokenSecret       = config.Env.RefreshTokenSecret
	accessTokenExpiryInSecs  = config.Env.AccessTokenExpiryInSecs
	refreshTokenExpiryInSecs = config.Env.RefreshTokenExpiryInSecs
)

func main() {
	log.SetFlags(log.Ldate | log.Llongfile)

	db, err := storage.NewPostgresDB(postgresConnStr)
	if err != nil {
		log.Fatal(err)
	}

	redisClient, err := storage.NewRedisClient(redisAddr, redisPassword)
	if err != nil {
		log.Fatal(err)
	}

	srv := server.NewServer(&server.ServerConfig{
		Addr:        srvAddr,
		DB:          db,
		RedisClient: redisClient,
		TokenManager: auth.NewTokenService(
			accessTokenSecret,
			refreshTokenSecret,
			accessTokenExpiryInSecs,
			refreshTokenExpiryInSecs,
		),
	},
	)
	srv.Run()
}
