package domain

import "errors"

var (
	// ErrDiscoveryUnavailable - все зеркала сервиса геоданных недоступны
	ErrDiscoveryUnavailable = errors.New("library discovery unavailable")

	// ErrProbeTimeout - проверка не уложилась в отведённое время
	ErrProbeTimeout = errors.New("availability probe timed out")

	// ErrProbeFault - непредвиденный сбой во время проверки (изменилась разметка, упал браузер)
	ErrProbeFault = errors.New("availability probe failed")

	// ErrUnsupportedSystem - для системы нет адаптера каталога
	ErrUnsupportedSystem = errors.New("unsupported catalog system")
)
