package application_test

import (
	"github.com/stretchr/testify/mock"
)

type mockedScheduler struct {
	mock.Mock
	task func()
}

func (m *mockedScheduler) Start() {
	m.Called()
}

func (m *mockedScheduler) Stop() {
	m.Called()
}

func (m *mockedScheduler) ScheduleTask(interval int64, immediate bool, task func()) error {
	args := m.Called(interval, immediate, task)
	m.task = task
	return args.Error(0)
}
