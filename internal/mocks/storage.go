package mocks

import (
	"io"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

// Save drains r so tests can assert on the size that reached storage
func (m *MockBlobStore) Save(name string, r io.Reader) (int64, error) {
	n, _ := io.Copy(io.Discard, r)
	args := m.Called(name, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlobStore) Open(name string) (io.ReadCloser, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Delete(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockBlobStore) Exists(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}
