//go:build !amd64 && !arm64

package sawg

func init() {
	setScalarMode()
}
