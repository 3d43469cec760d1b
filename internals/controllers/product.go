package controllers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strconv"

	"gin-shop/internals/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"gorm.io/gorm"
)

type ProductController struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewProductController(db *gorm.DB, logger *zap.Logger) *ProductController {
	return &ProductController{DB: db, Logger: logger}
}

var allowedPhotoMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// parseProductForm validates the multipart fields shared by create and
// update. Prices keep two decimal places; negative prices and stock
// are rejected.
func parseProductForm(c *gin.Context) (name string, price float64, stock int, active bool, err error) {
	name = c.PostForm("name")
	if name == "" || len(name) > 100 {
		return "", 0, 0, false, errors.New("A product name of up to 100 characters is required")
	}

	price, perr := strconv.ParseFloat(c.PostForm("price"), 64)
	if perr != nil || price < 0 {
		return "", 0, 0, false, errors.New("Price must be a non-negative number")
	}
	price = math.Round(price*100) / 100

	stock, serr := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if serr != nil || stock < 0 {
		return "", 0, 0, false, errors.New("Stock must be a non-negative integer")
	}

	active = c.DefaultPostForm("active", "true") == "true"
	return name, price, stock, active, nil
}

// readPhoto pulls the optional "photo" part from the form. Only JPG
// and PNG are accepted; the bytes are verified to decode as the
// declared format before they are stored.
func readPhoto(c *gin.Context) (b64 string, mime string, ok bool, err error) {
	file, fileErr := c.FormFile("photo")
	if fileErr != nil {
		return "", "", false, nil // no photo sent
	}

	mime = file.Header.Get("Content-Type")
	if !allowedPhotoMIME[mime] {
		return "", "", false, errors.New("Only JPG or PNG files are accepted")
	}

	src, err := file.Open()
	if err != nil {
		return "", "", false, errors.New("Failed to read uploaded file")
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return "", "", false, errors.New("Failed to read uploaded file")
	}

	if _, _, err := image.Decode(bytes.NewReader(raw)); err != nil {
		return "", "", false, errors.New("Uploaded file is not a valid image")
	}

	return base64.StdEncoding.EncodeToString(raw), mime, true, nil
}

func (p *ProductController) Create(c *gin.Context) {
	var count int64
	p.DB.Model(&models.Category{}).Count(&count)
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Add at least one category before creating products"})
		return
	}

	name, price, stock, active, err := parseProductForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := p.DB.First(&category, c.PostForm("category_id")).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	product := models.Product{
		Name:       name,
		Price:      price,
		Stock:      stock,
		Active:     active,
		CategoryID: category.ID,
	}

	b64, mime, hasPhoto, err := readPhoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if hasPhoto {
		product.HasPhoto = true
		product.PhotoBase64 = b64
		product.PhotoMIME = mime
	}

	if err := p.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "id": product.ID})
}

func productJSON(product *models.Product) gin.H {
	return gin.H{
		"id":        product.ID,
		"name":      product.Name,
		"price":     product.Price,
		"stock":     product.Stock,
		"active":    product.Active,
		"has_photo": product.HasPhoto,
		"category":  gin.H{"id": product.Category.ID, "name": product.Category.Name},
	}
}

func (p *ProductController) List(c *gin.Context) {
	var products []models.Product
	if err := p.DB.Preload("Category").Order("name").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]gin.H, 0, len(products))
	for i := range products {
		out = append(out, productJSON(&products[i]))
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (p *ProductController) Get(c *gin.Context) {
	var product models.Product
	if err := p.DB.Preload("Category").First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, productJSON(&product))
}

func (p *ProductController) Update(c *gin.Context) {
	var product models.Product
	if err := p.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	name, price, stock, active, err := parseProductForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := p.DB.First(&category, c.PostForm("category_id")).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	updates := map[string]interface{}{
		"name":        name,
		"price":       price,
		"stock":       stock,
		"active":      active,
		"category_id": category.ID,
	}

	b64, mime, hasPhoto, err := readPhoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if hasPhoto {
		updates["has_photo"] = true
		updates["photo_base64"] = b64
		updates["photo_mime"] = mime
	} else if c.PostForm("remove_photo") == "true" {
		updates["has_photo"] = false
		updates["photo_base64"] = ""
		updates["photo_mime"] = ""
	}

	if err := p.DB.Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

func (p *ProductController) Delete(c *gin.Context) {
	var product models.Product
	if err := p.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := p.DB.Unscoped().Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// placeholderPNG renders the solid block shown for products without a
// photo.
func placeholderPNG(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	red := color.RGBA{R: 255, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: red}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// Image serves the stored photo bytes, or the placeholder when the
// product has none.
func (p *ProductController) Image(c *gin.Context) {
	var product models.Product
	if err := p.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if !product.HasPhoto {
		c.Data(http.StatusOK, "image/png", placeholderPNG(200))
		return
	}

	raw, err := base64.StdEncoding.DecodeString(product.PhotoBase64)
	if err != nil {
		p.Logger.Warn("stored photo is not valid base64", zap.Uint("product_id", product.ID))
		c.Data(http.StatusOK, "image/png", placeholderPNG(200))
		return
	}

	c.Data(http.StatusOK, product.PhotoMIME, raw)
}

// Thumbnail scales the stored photo to fit within size×size pixels,
// preserving the aspect ratio and the original format.
func (p *ProductController) Thumbnail(c *gin.Context) {
	var product models.Product
	if err := p.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "128"))
	if err != nil || size < 16 || size > 512 {
		size = 128
	}

	if !product.HasPhoto {
		c.Data(http.StatusOK, "image/png", placeholderPNG(size))
		return
	}

	raw, err := base64.StdEncoding.DecodeString(product.PhotoBase64)
	if err != nil {
		c.Data(http.StatusOK, "image/png", placeholderPNG(size))
		return
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		p.Logger.Warn("stored photo does not decode", zap.Uint("product_id", product.ID), zap.Error(err))
		c.Data(http.StatusOK, "image/png", placeholderPNG(size))
		return
	}

	bounds := src.Bounds()
	factor := math.Min(float64(size)/float64(bounds.Dx()), float64(size)/float64(bounds.Dy()))
	w := int(float64(bounds.Dx()) * factor)
	h := int(float64(bounds.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if product.PhotoMIME == "image/jpeg" {
		err = jpeg.Encode(&buf, dst, nil)
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render thumbnail"})
		return
	}

	c.Data(http.StatusOK, product.PhotoMIME, buf.Bytes())
}
