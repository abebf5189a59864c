// Package imageurl はコンテンツストアの画像アセット参照から画像CDNのURLを組み立てる。
//
// Builderは不変で、各メソッドは設定を追加した新しいBuilderを返す。
// ネットワーク通信は行わず、同じ参照と同じ設定からは常に同じURLが得られる。
// クロップと焦点（hotspot）が指定された画像は、幅と高さの両方を指定したときに
// 焦点を中心とした切り抜き範囲（rect）が計算される。
package imageurl
