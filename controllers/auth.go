// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"carwash-backend/config"
	"carwash-backend/models"
	"carwash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterInput is a tagged union discriminated by role: the customer
// variant needs only name/email/password, the admin variant must also
// carry the admin secret and the shop to create.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`

	Role        string `json:"role" binding:"omitempty,oneof=customer admin"`
	AdminSecret string `json:"adminSecret"`
	ShopName    string `json:"shopName"`
	ShopAddress string `json:"shopAddress"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	role := input.Role
	if role == "" {
		role = models.RoleCustomer
	}

	if role == models.RoleAdmin {
		secret := os.Getenv("ADMIN_SECRET")
		if secret == "" || input.AdminSecret != secret {
			utils.RespondWithError(c, http.StatusForbidden, "Invalid admin secret")
			return
		}
		if strings.TrimSpace(input.ShopName) == "" || strings.TrimSpace(input.ShopAddress) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Shop name and address are required for admin registration")
			return
		}
	}

	var existing models.User
	result := config.DB.Where("email = ?", input.Email).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	newUser := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password, // Hashed in BeforeCreate hook
		Role:     role,
	}

	// Admin registration creates the shop in the same transaction; the
	// unique manager index keeps it at one shop per admin.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		if role != models.RoleAdmin {
			return nil
		}

		shop := models.Shop{
			ID:            uuid.New(),
			Name:          input.ShopName,
			Address:       input.ShopAddress,
			ManagerUserID: newUser.ID,
		}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		newUser.ShopID = &shop.ID
		return tx.Model(&newUser).Update("shop_id", shop.ID).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, err := utils.GenerateToken(newUser.ID.String(), newUser.Role, newUser.Email, shopClaim(newUser))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":     newUser.ID,
			"name":   newUser.Name,
			"email":  newUser.Email,
			"role":   newUser.Role,
			"shopId": newUser.ShopID,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	result := config.DB.Where("email = ?", strings.TrimSpace(input.Email)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.Role, user.Email, shopClaim(user))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"shopId": user.ShopID,
		},
	})
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
			"shopId": user.ShopID,
		},
	})
}

func shopClaim(user models.User) string {
	if user.ShopID == nil {
		return ""
	}
	return user.ShopID.String()
}
