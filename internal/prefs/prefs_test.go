package prefs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_Membership(t *testing.T) {
	s := New(
		[]string{"com.whatsapp", "org.fdroid.fdroid"},
		[]string{"com.instagram.android"},
	)

	assert.True(t, s.IsEssential("com.whatsapp"))
	assert.False(t, s.IsEssential("com.instagram.android"))
	assert.True(t, s.IsLimited("com.instagram.android"))
	assert.False(t, s.IsLimited("com.whatsapp"))
	assert.False(t, s.IsLimited("com.unknown.app"))
}

func TestSource_UpdateReplacesBothSets(t *testing.T) {
	s := New([]string{"com.whatsapp"}, []string{"com.instagram.android"})

	s.Update([]string{"com.instagram.android"}, []string{"com.twitter.android"})

	assert.True(t, s.IsEssential("com.instagram.android"))
	assert.False(t, s.IsLimited("com.instagram.android"))
	assert.True(t, s.IsLimited("com.twitter.android"))
	assert.False(t, s.IsEssential("com.whatsapp"))
}

func TestSource_Limited_Sorted(t *testing.T) {
	s := New(nil, []string{"com.zhiliaoapp.musically", "com.instagram.android", "com.twitter.android"})

	assert.Equal(t, []string{
		"com.instagram.android",
		"com.twitter.android",
		"com.zhiliaoapp.musically",
	}, s.Limited())
}

func TestSource_ConcurrentReadsDuringUpdate(t *testing.T) {
	s := New([]string{"a"}, []string{"b"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.IsEssential("a")
				s.IsLimited("b")
			}
		}()
	}
	for i := 0; i < 100; i++ {
		s.Update([]string{"a"}, []string{"b"})
	}
	wg.Wait()
}
