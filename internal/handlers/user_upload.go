package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"laundry/internal/models"
)

const publicRootDir = "/app/public"

// validateImageFile checks the extension and size of an uploaded image and
// returns the normalized extension.
func validateImageFile(filename string, size int64) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	const maxImageSize = 5 << 20
	if size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}
	return extension, nil
}

func saveProfileImage(file *multipart.FileHeader) (string, error) {
	extension, err := validateImageFile(file.Filename, file.Size)
	if err != nil {
		return "", err
	}

	filename := primitive.NewObjectID().Hex() + extension

	dir := filepath.Join(publicRootDir, "uploads", "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] saveProfileImage: failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] saveProfileImage: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] saveProfileImage: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] saveProfileImage: failed to save file %s: %v", fullPath, err)
		return "", err
	}

	return filepath.ToSlash(filepath.Join("uploads", "profiles", filename)), nil
}

// safeDeleteUpload removes a previously stored upload. Paths outside the
// uploads tree are refused.
func safeDeleteUpload(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := filepath.Clean(publicRootDir)
	targetPath := filepath.Join(cleanBase, filepath.FromSlash(cleanRel))
	cleanTarget := filepath.Clean(targetPath)
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside public root: %s", relPath)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return nil
}

// UploadProfileImage stores a new profile picture for the caller and removes
// the previous one.
func UploadProfileImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/profile/image"
		defer handlePanic(c, route)

		userID, ok := callerID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Please provide an image file")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "user not found")
				return
			}
			log.Println("[USER] [ERROR] upload lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		imagePath, err := saveProfileImage(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{"profileImageUrl": imagePath, "updatedAt": now},
		})
		if err != nil {
			log.Println("[USER] [ERROR] profile image update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// The old file is orphaned once the document points at the new one.
		if user.ProfileImageURL != "" {
			if err := safeDeleteUpload(user.ProfileImageURL); err != nil {
				log.Println("[USER] [ERROR] old profile image cleanup failed:", err)
			}
		}

		user.ProfileImageURL = imagePath
		user.UpdatedAt = now

		log.Println("[USER] [INFO] profile image updated:", userID.Hex())
		respondData(c, http.StatusOK, user)
	}
}
