package mysql

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestToDriverDSN(t *testing.T) {
	t.Parallel()

	got, err := toDriverDSN("mariadb://app:secret@db:3306/covid")
	if err != nil {
		t.Fatalf("toDriverDSN: %v", err)
	}
	c, err := mysql.ParseDSN(got)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", got, err)
	}
	if c.User != "app" || c.Passwd != "secret" || c.Addr != "db:3306" || c.DBName != "covid" || !c.ParseTime {
		t.Fatalf("parsed config = %+v", c)
	}

	got, err = toDriverDSN("app@tcp(localhost:3306)/covid")
	if err != nil {
		t.Fatalf("toDriverDSN(native): %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("native DSN %q lacks parseTime", got)
	}

	for _, bad := range []string{"mysql://db:3306/covid", "mysql://app@db:3306/", "not a dsn"} {
		if _, err := toDriverDSN(bad); err == nil {
			t.Errorf("toDriverDSN(%q): want error", bad)
		}
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()
	if got, want := quoteFQN("covid.cases"), "`covid`.`cases`"; got != want {
		t.Fatalf("quoteFQN = %s, want %s", got, want)
	}
	if got, want := quoteFQN("we`ird"), "`we``ird`"; got != want {
		t.Fatalf("quoteFQN = %s, want %s", got, want)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	err := describe(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"})
	if !strings.Contains(err.Error(), "error 1146") {
		t.Fatalf("describe = %v", err)
	}
	plain := errors.New("boom")
	if describe(plain) != plain {
		t.Fatal("non-server errors pass through")
	}
}
