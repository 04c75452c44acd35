// Package validate checks form input before it reaches the network.
package validate

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	MaxImages      = 3
	MaxImageBytes  = 5 << 20
	MaxPostContent = 2000
	MaxComment     = 500
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern  = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// FieldError is a single rejected field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Errors lists every rejected field in declaration order.
type Errors []*FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the first failure or nil.
func First(err error) *FieldError {
	var errs Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0]
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

type LoginForm struct {
	Email    string `label:"email" validate:"required,emailaddr"`
	Password string `label:"password" validate:"required,min=8"`
}

type SignupForm struct {
	Name            string `label:"nickname" validate:"required,min=2,max=12"`
	Email           string `label:"email" validate:"required,emailaddr"`
	Password        string `label:"password" validate:"required,min=8"`
	PasswordConfirm string `label:"password confirmation" validate:"required,eqfield=Password"`
}

type RecoverForm struct {
	Email           string `label:"email" validate:"required,emailaddr"`
	Password        string `label:"password" validate:"required,min=8,strongpw"`
	PasswordConfirm string `label:"password confirmation" validate:"required,eqfield=Password"`
}

type NicknameForm struct {
	Name string `label:"nickname" validate:"required,min=2,max=12"`
}

type PasswordChangeForm struct {
	OldPassword     string `label:"current password" validate:"required"`
	NewPassword     string `label:"new password" validate:"required,min=8"`
	PasswordConfirm string `label:"password confirmation" validate:"required,eqfield=NewPassword"`
}

type PostForm struct {
	Title   string   `label:"title" validate:"required"`
	Content string   `label:"content" validate:"required,max=2000"`
	Images  []string `label:"images" validate:"max=3"`
}

type CommentForm struct {
	Content string `label:"comment" validate:"required,max=500"`
}

// Validator wraps the go-playground validator with the board's rules.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return &Validator{v: v}
}

var defaultValidator = New()

// Struct validates a form. Strings are trimmed in place first, except for
// password fields.
func Struct(form any) error {
	return defaultValidator.Struct(form)
}

func (v *Validator) Struct(form any) error {
	trimStrings(form)
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter your %s", label)
	case "emailaddr":
		return "That doesn't look like an email address"
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("You can attach at most %s %s", fe.Param(), label)
		}
		return fmt.Sprintf("The %s must be at most %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "strongpw":
		return "The password must contain a letter, a number and a special character"
	default:
		return fmt.Sprintf("The %s is invalid", label)
	}
}

// IsStrongPassword reports whether s has 8+ characters including a letter,
// a digit and one of !@#$%^&*(),.?":{}|<>.
func IsStrongPassword(s string) bool {
	return len([]rune(s)) >= 8 &&
		letterPattern.MatchString(s) &&
		digitPattern.MatchString(s) &&
		specialPattern.MatchString(s)
}

// IsEmail applies the board's permissive email check.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func trimStrings(form any) {
	rv := reflect.ValueOf(form)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		if strings.Contains(strings.ToLower(rt.Field(i).Name), "password") {
			continue
		}
		f.SetString(strings.TrimSpace(f.String()))
	}
}

// Image is a local file accepted for upload.
type Image struct {
	Path     string
	Name     string
	MimeType string
	Size     int64
}

// ImageFile checks that path is an image of at most 5 MiB.
func ImageFile(path string) (*Image, error) {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FieldError{Field: "Images", Message: fmt.Sprintf("Cannot read %s", path)}
	}
	if info.IsDir() {
		return nil, &FieldError{Field: "Images", Message: fmt.Sprintf("%s is a directory", path)}
	}
	if info.Size() > MaxImageBytes {
		return nil, &FieldError{Field: "Images", Message: "Images must be 5MB or smaller"}
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &FieldError{Field: "Images", Message: fmt.Sprintf("Cannot read %s", path)}
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, &FieldError{Field: "Images", Message: "Only image files can be uploaded"}
	}
	return &Image{Path: path, Name: info.Name(), MimeType: mt.String(), Size: info.Size()}, nil
}

// ImageFiles checks a list of paths, rejecting more than three.
func ImageFiles(paths []string) ([]*Image, error) {
	var cleaned []string
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > MaxImages {
		return nil, &FieldError{Field: "Images", Message: fmt.Sprintf("You can attach at most %d images", MaxImages)}
	}
	images := make([]*Image, 0, len(cleaned))
	for _, p := range cleaned {
		img, err := ImageFile(p)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}
