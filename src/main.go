package main

import (
	"ctb/src/boot"
	"ctb/src/config"
	"ctb/src/controllers"
	"ctb/src/middlewares"
	"ctb/src/types"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api"
)

// showDateValidatorFunc rejects show dates that already passed. Times within
// the date are checked against the clock during scheduling.
var showDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	parsed, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, date, time.Local)
	if err != nil {
		return false
	}
	today := time.Now()
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	return !parsed.Before(startOfDay)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiGroup(g *gin.Engine) *gin.RouterGroup {
	api := g.Group(apiPrefix)
	return api
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	api = showHandlers(api)
	return api
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	api := apiGroup(g)
	guest := api.Group("/auth")
	guest.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, status, err := controllers.AuthRegister(&body)
			if err != nil {
				log.Printf("[AuthRegister] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"success": true, "token": token})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, status, err := controllers.AuthLogin(&body)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"success": true, "token": token})
		})
	return guest
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("Could not load .env: %s\n", err.Error())
		}
	}

	boot.InitDb()
	boot.InitScheduler()
	go boot.UpdateExpiredJobs()
	go boot.RecoverQueuedJobs()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("showdate", showDateValidatorFunc)
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	guestAuthRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = bookingHandlers(authorized)
	}

	adminRoot := router.Group(apiPrefix)
	adminRoot.Use(middlewares.AuthMiddleware, middlewares.AdminMiddleware)
	{
		adminRoot = showAdminHandlers(adminRoot)

		admin := adminRoot.Group("/admin")
		adminHandlers(admin)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
