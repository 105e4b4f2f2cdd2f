package service

import (
	"context"
	"testing"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/repository"
)

type fakeChats struct {
	nextID   int64
	private  map[[2]int64]int64
	created  int
	byMember map[int64][]model.Chat
}

var _ repository.ChatRepository = (*fakeChats)(nil)

func (f *fakeChats) Create(_ context.Context, chatType, _ string, createdBy int64, memberIDs []int64) (int64, error) {
	f.nextID++
	f.created++
	if chatType == "private" && len(memberIDs) == 1 {
		if f.private == nil {
			f.private = map[[2]int64]int64{}
		}
		f.private[pairKey(createdBy, memberIDs[0])] = f.nextID
	}
	return f.nextID, nil
}

func (f *fakeChats) FindPrivate(_ context.Context, a, b int64) (int64, error) {
	if id, ok := f.private[pairKey(a, b)]; ok {
		return id, nil
	}
	return 0, errs.ErrNotFound
}

func (f *fakeChats) ListForUser(_ context.Context, userID int64) ([]model.Chat, error) {
	return f.byMember[userID], nil
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func TestCreatePrivateChatReused(t *testing.T) {
	repo := &fakeChats{}
	s := NewChatService(repo)
	ctx := context.Background()

	first, err := s.Create(ctx, 42, "private", "Bob", []int64{99})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Create(ctx, 42, "private", "Bob", []int64{99})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("second create allocated a new chat: %d != %d", second, first)
	}
	if repo.created != 1 {
		t.Fatalf("created %d chats, want 1", repo.created)
	}

	// The other direction reuses the same chat too.
	third, err := s.Create(ctx, 99, "private", "Анна", []int64{42})
	if err != nil {
		t.Fatal(err)
	}
	if third != first {
		t.Fatalf("reverse direction: %d != %d", third, first)
	}
}

func TestCreateDefaultsToPrivate(t *testing.T) {
	repo := &fakeChats{}
	s := NewChatService(repo)
	if _, err := s.Create(context.Background(), 42, "", "Bob", []int64{99}); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.private[pairKey(42, 99)]; !ok {
		t.Fatal("chat was not stored as private")
	}
}

func TestChatListEmptyIsNotNil(t *testing.T) {
	s := NewChatService(&fakeChats{})
	got, err := s.List(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got = %#v, want empty non-nil", got)
	}
}
