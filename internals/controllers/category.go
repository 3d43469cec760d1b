package controllers

import (
	"net/http"

	"gin-shop/internals/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryController struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewCategoryController(db *gorm.DB, logger *zap.Logger) *CategoryController {
	return &CategoryController{DB: db, Logger: logger}
}

type categoryBody struct {
	Name string `json:"name" binding:"required,max=60"`
}

func (ct *CategoryController) List(c *gin.Context) {
	var categories []models.Category
	if err := ct.DB.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		out = append(out, gin.H{"id": cat.ID, "name": cat.Name})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (ct *CategoryController) Create(c *gin.Context) {
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A category name of up to 60 characters is required"})
		return
	}

	category := models.Category{Name: body.Name}
	if err := ct.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created",
		"id":      category.ID,
	})
}

func (ct *CategoryController) Update(c *gin.Context) {
	var category models.Category
	if err := ct.DB.First(&category, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A category name of up to 60 characters is required"})
		return
	}

	if err := ct.DB.Model(&category).Update("name", body.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// Delete removes a category together with every product in it
func (ct *CategoryController) Delete(c *gin.Context) {
	var category models.Category
	if err := ct.DB.First(&category, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	err := ct.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("category_id = ?", category.ID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&category).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
