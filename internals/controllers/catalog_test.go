package controllers_test

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"gin-shop/internals/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminCookies(t *testing.T, r *gin.Engine, db *gorm.DB) []*http.Cookie {
	t.Helper()
	createVerifiedUser(t, db, "admin@example.com", "Abcdef1!")
	return loginCookies(t, r, "admin@example.com", "Abcdef1!")
}

// productForm builds the multipart body the product endpoints accept.
// photo may be nil.
func productForm(t *testing.T, fields map[string]string, photo []byte, photoMIME string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.png"`)
		header.Set("Content-Type", photoMIME)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doForm(t *testing.T, r *gin.Engine, method, path string, body *bytes.Buffer, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCategoryMutationsRequireSession(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Books"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryCRUD(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Books"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeBody(t, w)["id"]

	// Listing is public
	w = doJSON(t, r, http.MethodGet, "/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Books")

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/categories/%v", id), gin.H{"name": "Magazines"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%v", id), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Zero(t, count)
}

func TestCategoryRejectsEmptyName(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": ""}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductRequiresExistingCategory(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	body, ct := productForm(t, map[string]string{
		"name": "Lamp", "price": "19.90", "stock": "3", "category_id": "1",
	}, nil, "")
	w := doForm(t, r, http.MethodPost, "/products", body, ct, cookies)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "category")
}

func TestProductCreateListAndImage(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Lighting"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	catID := fmt.Sprintf("%v", decodeBody(t, w)["id"])

	// Without a photo
	body, ct := productForm(t, map[string]string{
		"name": "Lamp", "price": "19.899", "stock": "3", "category_id": catID,
	}, nil, "")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plainID := fmt.Sprintf("%v", decodeBody(t, w)["id"])

	// Price keeps two decimal places
	var stored models.Product
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, 19.90, stored.Price)

	// A product with no photo serves the placeholder
	req := httptest.NewRequest(http.MethodGet, "/products/"+plainID+"/image", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	// With a photo
	body, ct = productForm(t, map[string]string{
		"name": "Lamp Deluxe", "price": "39.90", "stock": "1", "category_id": catID,
	}, tinyPNG(t), "image/png")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	photoID := fmt.Sprintf("%v", decodeBody(t, w)["id"])

	req = httptest.NewRequest(http.MethodGet, "/products/"+photoID+"/image", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/products/"+photoID+"/thumbnail?size=32", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	thumb, _, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 32)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 32)

	// Listing is public and includes the category
	w = doJSON(t, r, http.MethodGet, "/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lighting")
}

func TestProductRejectsBadUploads(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Misc"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	catID := fmt.Sprintf("%v", decodeBody(t, w)["id"])

	// Wrong MIME type
	body, ct := productForm(t, map[string]string{
		"name": "Doc", "price": "1.00", "stock": "1", "category_id": catID,
	}, []byte("%PDF-1.4"), "application/pdf")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Declared PNG that does not decode
	body, ct = productForm(t, map[string]string{
		"name": "Fake", "price": "1.00", "stock": "1", "category_id": catID,
	}, []byte("not an image"), "image/png")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Negative price
	body, ct = productForm(t, map[string]string{
		"name": "Cheap", "price": "-1.00", "stock": "1", "category_id": catID,
	}, nil, "")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryDeleteCascadesToProducts(t *testing.T) {
	r, db := setupServer(t)
	cookies := adminCookies(t, r, db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Doomed"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	catID := fmt.Sprintf("%v", decodeBody(t, w)["id"])

	body, ct := productForm(t, map[string]string{
		"name": "Orphan", "price": "5.00", "stock": "1", "category_id": catID,
	}, nil, "")
	w = doForm(t, r, http.MethodPost, "/products", body, ct, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/categories/"+catID, nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var products int64
	db.Model(&models.Product{}).Count(&products)
	assert.Zero(t, products)
}
