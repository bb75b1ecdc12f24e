//go:build !linux

package jobpool

func PinToCPU(cpu int) error {
	return ErrPinUnsupported
}
