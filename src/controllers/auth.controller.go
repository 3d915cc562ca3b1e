package controllers

import (
	"ctb/src/db"
	"ctb/src/models"
	"ctb/src/types"
	"ctb/src/utils"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthRegister creates the user account and signs them in. The address named
// in ADMIN_EMAIL registers straight into the admin role.
func AuthRegister(body *types.RegisterUserRequestBody) (string, int, error) {
	db := db.GetDb()
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var existing models.User
	err := db.Model(&models.User{}).Where(&models.User{Email: email}).First(&existing).Error
	if err == nil {
		return "", http.StatusBadRequest, errors.New("an account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", http.StatusInternalServerError, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return "", http.StatusInternalServerError, errors.New("could not create account")
	}

	role := types.ROLE_USER
	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" && strings.EqualFold(adminEmail, email) {
		role = types.ROLE_ADMIN
	}
	user := models.User{
		Name:     strings.TrimSpace(body.Name),
		Email:    email,
		Password: string(hashed),
		Role:     string(role),
	}
	if err := db.Create(&user).Error; err != nil {
		return "", http.StatusInternalServerError, err
	}

	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return token, http.StatusCreated, nil
}

func AuthLogin(body *types.LoginUserRequestBody) (string, int, error) {
	db := db.GetDb()
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User
	err := db.Model(&models.User{}).Where(&models.User{Email: email}).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", http.StatusUnauthorized, errors.New("invalid email or password")
		}
		return "", http.StatusInternalServerError, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return "", http.StatusUnauthorized, errors.New("invalid email or password")
	}

	token, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return token, http.StatusOK, nil
}
