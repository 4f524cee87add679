package tensor

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
//
// Example:
//
//	t := tensor.Ones[float64](Shape{2, 3}, backend)
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, oneOf[T](), b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// FullRaw creates a RawTensor of any dtype (including half precision)
// filled with value.
func FullRaw(shape Shape, dtype DataType, value float64, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if value == 0 {
		return raw, nil
	}
	values := make([]float64, raw.NumElements())
	for i := range values {
		values[i] = value
	}
	raw.SetFloat64s(values)
	return raw, nil
}

// ScalarRaw creates a 0-D RawTensor holding value.
func ScalarRaw(dtype DataType, value float64, device Device) (*RawTensor, error) {
	return FullRaw(Shape{}, dtype, value, device)
}

// oneOf returns 1 for numeric types and true for bool.
func oneOf[T DType]() T {
	var one T
	switch p := any(&one).(type) {
	case *bool:
		*p = true
	case *float32:
		*p = 1
	case *float64:
		*p = 1
	case *int32:
		*p = 1
	case *int64:
		*p = 1
	case *uint8:
		*p = 1
	}
	return one
}
