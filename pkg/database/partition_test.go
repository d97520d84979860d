package database

import (
	"strings"
	"testing"
	"time"
)

func TestParentTableDDL_Feedback(t *testing.T) {
	ddl, err := parentTableDDL("feedback")
	if err != nil {
		t.Fatalf("读取 feedback 主表 DDL 失败: %v", err)
	}

	// 主表必须是范围分区表，否则 PARTITION OF 子分区全部建不出来
	if !strings.Contains(ddl, "PARTITION BY RANGE (created_at)") {
		t.Error("主表 DDL 缺少 PARTITION BY RANGE (created_at)")
	}
	// 分区表主键必须包含分区键
	if !strings.Contains(ddl, "PRIMARY KEY (id, created_at)") {
		t.Error("主表主键应包含分区键 created_at")
	}
	if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS feedback") {
		t.Error("主表 DDL 应幂等建表")
	}
}

func TestParentTableDDL_UnknownTable(t *testing.T) {
	if _, err := parentTableDDL("no_such_table"); err == nil {
		t.Error("未配置 DDL 的表应报错")
	}
}

func TestPartitionFor(t *testing.T) {
	m := &PartitionManager{tableName: "feedback"}

	tests := []struct {
		month    time.Time
		wantName string
		wantFrom string
		wantTo   string
	}{
		{time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC), "feedback_y2026m08", "2026-08-01", "2026-09-01"},
		// 年末滚动到下一年
		{time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), "feedback_y2026m12", "2026-12-01", "2027-01-01"},
	}

	for _, tt := range tests {
		name, from, to := m.partitionFor(tt.month)
		if name != tt.wantName {
			t.Errorf("分区名 = %s, want %s", name, tt.wantName)
		}
		if got := from.Format("2006-01-02"); got != tt.wantFrom {
			t.Errorf("下界 = %s, want %s", got, tt.wantFrom)
		}
		if got := to.Format("2006-01-02"); got != tt.wantTo {
			t.Errorf("上界 = %s, want %s", got, tt.wantTo)
		}
	}
}
