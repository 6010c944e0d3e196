package storage_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/apperrors"
	"inventory/internal/storage"
)

var storedName = regexp.MustCompile(`^[A-Za-z0-9_]+_\d+-[0-9a-f]{12}(\.[A-Za-z0-9_]+)?$`)

func TestSaveImage(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewDisk(root)
	require.NoError(t, err)

	file, err := disk.Save(strings.NewReader("png-bytes"), "my photo (1).png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "my photo (1).png", file.OriginalName)
	assert.Equal(t, "image/png", file.MimeType)
	assert.Equal(t, int64(len("png-bytes")), file.Size)
	assert.True(t, strings.HasPrefix(file.Filename, "my_photo__1__"), file.Filename)
	assert.True(t, strings.HasSuffix(file.Filename, ".png"), file.Filename)
	assert.Regexp(t, storedName, file.Filename)
	assert.Equal(t, "/uploads/images/"+file.Filename, file.URL)

	data, err := os.ReadFile(filepath.Join(root, storage.ImagesDir, file.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSaveDocumentGoesToDocumentsDir(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewDisk(root)
	require.NoError(t, err)

	file, err := disk.Save(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/documents/"+file.Filename, file.URL)
	assert.FileExists(t, filepath.Join(root, storage.DocumentsDir, file.Filename))
}

func TestSaveGeneratesDistinctNames(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	a, err := disk.Save(strings.NewReader("1"), "same.jpg", "image/jpeg")
	require.NoError(t, err)
	b, err := disk.Save(strings.NewReader("2"), "same.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a.Filename, b.Filename)
}

func TestDeleteIsIdempotent(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewDisk(root)
	require.NoError(t, err)

	file, err := disk.Save(strings.NewReader("x"), "shoe.webp", "image/webp")
	require.NoError(t, err)

	require.NoError(t, disk.Delete(file.Filename))
	assert.NoFileExists(t, filepath.Join(root, storage.ImagesDir, file.Filename))

	// second delete of the same name still succeeds
	assert.NoError(t, disk.Delete(file.Filename))
	assert.NoError(t, disk.Delete("never-existed.png"))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "  ", "..", "../secret", "a/b.png", `a\b.png`, "x..y"} {
		err := disk.Delete(name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFilename, "name %q", name)
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, storage.Allowed("image/jpeg"))
	assert.True(t, storage.Allowed("application/pdf"))
	assert.True(t, storage.Allowed("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.False(t, storage.Allowed("application/x-msdownload"))
	assert.False(t, storage.Allowed("image/svg+xml"))
}

func TestSanitizeBaseName(t *testing.T) {
	assert.Equal(t, "hello_world_", storage.SanitizeBaseName("hello world!"))
	long := strings.Repeat("a", 80)
	assert.Len(t, storage.SanitizeBaseName(long), 50)
}
