package collection

import "github.com/hitoshi/linkvault/internal/model"

// NextLinkID は新しいリンクのIDを返す。
// 既存IDの最大値+1、リンクが無ければ1。最大IDのリンクを削除した後は同じIDが再利用される。
func NextLinkID(links []model.Link) int {
	maxID := 0
	for _, l := range links {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	return maxID + 1
}
