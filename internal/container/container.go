package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/config"
	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/pkg/helpers"
	"github.com/lostudea/lostudea-api/pkg/mailer"
)

// app-level container to share constructed components across packages.
// Router modules auto-wire their handlers from these singletons; main
// populates them once at startup.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
	esClient      *elasticsearch.Client

	itemStore   *application.ItemStore
	userService *application.UserService
	lifecycle   *application.MatchLifecycle
	images      *application.ImageUploader
	reportIndex *application.ReportIndex
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetItemStore(s *application.ItemStore)         { itemStore = s }
func GetItemStore() *application.ItemStore          { return itemStore }
func SetUserService(s *application.UserService)     { userService = s }
func GetUserService() *application.UserService      { return userService }
func SetLifecycle(l *application.MatchLifecycle)    { lifecycle = l }
func GetLifecycle() *application.MatchLifecycle     { return lifecycle }
func SetImageUploader(u *application.ImageUploader) { images = u }
func GetImageUploader() *application.ImageUploader  { return images }
func SetReportIndex(ix *application.ReportIndex)    { reportIndex = ix }
func GetReportIndex() *application.ReportIndex      { return reportIndex }
