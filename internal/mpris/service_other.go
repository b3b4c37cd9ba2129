//go:build !linux

package mpris

import "errors"

func startService(*Adapter) (service, error) {
	return nil, errors.New("mpris is only available on linux")
}
