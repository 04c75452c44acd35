package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	form := &LoginForm{Email: "  mina@example.com ", Password: "12345678"}
	require.NoError(t, Struct(form))
	assert.Equal(t, "mina@example.com", form.Email)

	err := Struct(&LoginForm{Email: "mina@example", Password: "short"})
	require.Error(t, err)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "Email", errs[0].Field)
	assert.Equal(t, "Password", errs[1].Field)
	assert.Contains(t, errs[1].Message, "at least 8")
}

func TestSignupNicknameBounds(t *testing.T) {
	base := SignupForm{Email: "a@b.co", Password: "password", PasswordConfirm: "password"}

	for name, ok := range map[string]bool{
		"a":             false,
		"ab":            true,
		"  ab  ":        true,
		"twelve-chars":  true,
		"thirteen-char": false,
		"민아":            true,
	} {
		form := base
		form.Name = name
		err := Struct(&form)
		if ok {
			assert.NoError(t, err, name)
		} else {
			assert.Equal(t, "Name", First(err).Field, name)
		}
	}
}

func TestPasswordConfirmMismatch(t *testing.T) {
	err := Struct(&SignupForm{Name: "mina", Email: "a@b.co", Password: "password", PasswordConfirm: "passw0rd"})
	fe := First(err)
	require.NotNil(t, fe)
	assert.Equal(t, "PasswordConfirm", fe.Field)
	assert.Equal(t, "Passwords do not match", fe.Message)
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("abc123!@"))
	assert.False(t, IsStrongPassword("abc123!"))
	assert.False(t, IsStrongPassword("abcdefgh1"))
	assert.False(t, IsStrongPassword("12345678!"))
	assert.False(t, IsStrongPassword("abcdefg!!"))

	err := Struct(&RecoverForm{Email: "a@b.co", Password: "abcdefgh1", PasswordConfirm: "abcdefgh1"})
	assert.Equal(t, "Password", First(err).Field)
}

func TestPostAndCommentLimits(t *testing.T) {
	assert.NoError(t, Struct(&PostForm{Title: "t", Content: strings.Repeat("가", MaxPostContent)}))
	assert.Error(t, Struct(&PostForm{Title: "t", Content: strings.Repeat("a", MaxPostContent+1)}))
	assert.Error(t, Struct(&PostForm{Title: "  ", Content: "x"}))
	assert.Error(t, Struct(&PostForm{Title: "t", Content: "x", Images: []string{"a", "b", "c", "d"}}))

	assert.NoError(t, Struct(&CommentForm{Content: strings.Repeat("a", MaxComment)}))
	assert.Error(t, Struct(&CommentForm{Content: strings.Repeat("a", MaxComment+1)}))
}

func pngBytes() []byte {
	return []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
}

func TestImageFile(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(png, pngBytes(), 0o600))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, append(pngBytes(), make([]byte, MaxImageBytes)...), 0o600))

	img, err := ImageFile(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, "cat.png", img.Name)

	_, err = ImageFile(txt)
	assert.EqualError(t, err, "Only image files can be uploaded")
	_, err = ImageFile(big)
	assert.EqualError(t, err, "Images must be 5MB or smaller")
	_, err = ImageFile(filepath.Join(dir, "nope.png"))
	assert.Error(t, err)

	_, err = ImageFiles([]string{png, png, png, png})
	assert.Error(t, err)
	imgs, err := ImageFiles([]string{png, " ", png})
	require.NoError(t, err)
	assert.Len(t, imgs, 2)
}
