package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
)

// Auth verifies the bearer token and sets viewer_id in the gin context
// for downstream handlers. Requests without a valid viewer identity are
// rejected with 401 before any feed work is done.
func Auth(userRepository repository.IUser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 || auth[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		userClaims, token, err := getClaim(auth[1], os.Getenv("SECRET_KEY"))
		if err != nil || !token.Valid {
			res.ResponseMessage = tokenFailureMessage(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		viewerID := userClaims.Subject
		if viewerID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if userRepository != nil && userClaims.UserName != "" {
			if _, err := userRepository.GetByUserName(ctx.Request.Context(), userClaims.UserName); err != nil {
				logger.GetLogger().WithField("userName", userClaims.UserName).Warn("Error while resolving token user")
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
				return
			}
		}

		ctx.Set("viewer_id", viewerID)
		ctx.Next()
	}
}

func tokenFailureMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "Malformed token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Token expired or not active yet"
		}
	}
	return "Unauthorized"
}

func getClaim(tokenString string, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}
