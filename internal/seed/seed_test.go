package seed

import (
	"context"
	"testing"
	"time"

	"heartbridge/internal/models"
	"heartbridge/internal/repository/memory"
	"heartbridge/internal/service"
)

func TestSeedDevelopers(t *testing.T) {
	ctx := context.Background()
	services := service.New(memory.New(), service.Options{SessionDuration: time.Hour})

	// dev2 already exists with its own password; seeding must leave it alone
	if _, err := services.Auth.Register(ctx, service.RegisterInput{
		Nickname: "dev2", Password: "original", Role: models.RoleChild,
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := SeedDevelopers(ctx, services.Auth)
	if err != nil {
		t.Fatalf("SeedDevelopers() error = %v", err)
	}
	if len(result.Created) != 4 || len(result.Existing) != 1 || result.Existing[0] != "dev2" {
		t.Errorf("result = %+v", result)
	}

	for i, dev := range Developers {
		user, err := services.Auth.GetUser(ctx, dev.Nickname)
		if err != nil {
			t.Fatalf("GetUser(%s) error = %v", dev.Nickname, err)
		}
		if !user.IsAdmin {
			t.Errorf("%s is not an admin", dev.Nickname)
		}
		wantRole := models.RoleParent
		if i%2 == 1 {
			wantRole = models.RoleChild
		}
		if user.Role != wantRole {
			t.Errorf("%s role = %s, want %s", dev.Nickname, user.Role, wantRole)
		}
	}

	if ok, _ := services.Auth.Authenticate(ctx, "dev1", DeveloperPassword); !ok {
		t.Error("dev1 cannot log in with the developer password")
	}
	if ok, _ := services.Auth.Authenticate(ctx, "dev2", "original"); !ok {
		t.Error("existing dev2 password was changed")
	}

	again, err := SeedDevelopers(ctx, services.Auth)
	if err != nil || len(again.Created) != 0 || len(again.Existing) != len(Developers) {
		t.Errorf("second run = %+v, %v", again, err)
	}
}
