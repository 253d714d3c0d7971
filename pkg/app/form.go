package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError single field validation error // 单个字段校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString joins all messages into one string // 将所有错误消息拼接为一个字符串
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// Maps returns key -> message pairs // 返回 key -> message 键值对
func (v ValidErrors) Maps() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

func (v ValidErrors) MapsToString() string {
	var b strings.Builder
	for _, err := range v {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Key)
		b.WriteString(": ")
		b.WriteString(err.Message)
	}
	return b.String()
}

// BindAndValid binds request parameters and validates them
// Validation messages are translated using the translator stored in the gin context
// BindAndValid 绑定请求参数并进行校验
// 校验消息使用 gin 上下文中保存的翻译器进行翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err != nil {
		verrs, isValid := err.(val.ValidationErrors)
		if !isValid {
			errs = append(errs, &ValidError{
				Key:     "body",
				Message: err.Error(),
			})
			return false, errs
		}
		trans, ok := c.Value("trans").(ut.Translator)
		if !ok {
			for _, verr := range verrs {
				errs = append(errs, &ValidError{
					Key:     verr.Field(),
					Message: verr.Error(),
				})
			}
			return false, errs
		}
		for key, value := range verrs.Translate(trans) {
			errs = append(errs, &ValidError{
				Key:     key,
				Message: value,
			})
		}
		return false, errs
	}

	return true, nil
}
