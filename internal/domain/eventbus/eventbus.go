// Package eventbus decouples the analysis pipeline from listeners such as
// history persistence.
package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

var (
	instance evbus.Bus
	asyncBus *AsyncEventBus
	once     sync.Once
)

func initBuses() {
	instance = New()
	asyncBus = NewAsyncEventBus(4)
	asyncBus.Start()
}

// Get returns the shared synchronous bus.
func Get() evbus.Bus {
	once.Do(initBuses)
	return instance
}

// GetAsync returns the shared asynchronous bus.
func GetAsync() *AsyncEventBus {
	once.Do(initBuses)
	return asyncBus
}

// New creates an independent synchronous bus.
func New() evbus.Bus {
	return evbus.New()
}

// Publish delivers an event on the shared synchronous bus.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// PublishAsync queues an event on the shared asynchronous bus.
func PublishAsync(topic string, args ...interface{}) {
	GetAsync().PublishAsync(topic, args...)
}

// Subscribe registers a handler on the shared synchronous bus.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// SubscribeAsync registers a handler on the shared asynchronous bus.
func SubscribeAsync(topic string, fn interface{}) error {
	return GetAsync().Subscribe(topic, fn)
}

// Shutdown stops the asynchronous worker pool.
func Shutdown() {
	if asyncBus != nil {
		asyncBus.Stop()
	}
}
