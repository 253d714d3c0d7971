// Package validator provides the gin binding validator with custom rules
// Package validator 提供带自定义规则的 gin 绑定验证器
package validator

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	val "github.com/go-playground/validator/v10"
)

// CustomValidator implements binding.StructValidator
// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	Validate *val.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates a struct or a pointer to struct
// ValidateStruct 校验结构体或结构体指针
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.Validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

// Engine returns the underlying validator engine
// Engine 返回底层验证引擎
func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.Validate = val.New()
		v.Validate.SetTagName("binding")
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// entityTypes valid entity type values
// entityTypes 合法的实体类型
var entityTypes = map[string]bool{
	"note":  true,
	"task":  true,
	"event": true,
}

// RegisterCustom registers custom validation rules on the gin binding validator
// RegisterCustom 在 gin 绑定验证器上注册自定义校验规则
func RegisterCustom() {
	v, ok := binding.Validator.Engine().(*val.Validate)
	if !ok {
		return
	}

	// entitytype: one of note, task, event
	_ = v.RegisterValidation("entitytype", func(fl val.FieldLevel) bool {
		return entityTypes[fl.Field().String()]
	})
}

// IsValidEntityType reports whether s is a known entity type
// IsValidEntityType 报告 s 是否为已知实体类型
func IsValidEntityType(s string) bool {
	return entityTypes[s]
}
