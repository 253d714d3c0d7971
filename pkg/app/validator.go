package app

// ValidatorInterface 绑定验证器接口，与 gin binding.StructValidator 对齐
type ValidatorInterface interface {
	ValidateStruct(obj interface{}) error
	Engine() interface{}
}
